package halgpu

import (
	"github.com/Exiver-Labs/xeokit-sdk/backend"
	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

func init() {
	backend.Register(backend.BackendHAL, func() (gpucore.GPUAdapter, error) {
		return Open()
	})
}
