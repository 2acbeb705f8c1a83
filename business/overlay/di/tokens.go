// Package di contains dependency injection tokens for the overlay context.
package di

import (
	"github.com/fd1az/mempool-block/business/overlay/app"
	"github.com/fd1az/mempool-block/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ControllerFactory = di.NewToken[*app.ControllerFactory]("overlay.ControllerFactory")
)

// Private dependency tokens - internal to overlay module
var (
	EngineLoader = di.NewToken[app.EngineLoader]("overlay:engineLoader")
)

func GetControllerFactory(c di.ServiceRegistry) *app.ControllerFactory {
	return di.GetToken(c, ControllerFactory)
}

func GetEngineLoader(c di.ServiceRegistry) app.EngineLoader {
	return di.GetToken(c, EngineLoader)
}
