// Package di contains dependency injection tokens for the trigger context.
package di

import (
	"github.com/fd1az/mempool-block/business/trigger/app"
	"github.com/fd1az/mempool-block/internal/di"
)

// Public service tokens - exposed to other modules
var (
	DetectorFactory = di.NewToken[*app.DetectorFactory]("trigger.DetectorFactory")
)

func GetDetectorFactory(c di.ServiceRegistry) *app.DetectorFactory {
	return di.GetToken(c, DetectorFactory)
}
