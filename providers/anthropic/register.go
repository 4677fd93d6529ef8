package anthropic

import (
	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
	"github.com/fable-labs/fable/providers"
)

func init() {
	providers.Register(providerID, func(pool *keypool.Pool) core.Provider {
		return New(pool)
	})
}
