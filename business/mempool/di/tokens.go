// Package di contains dependency injection tokens for the mempool context.
package di

import (
	"github.com/fd1az/mempool-block/business/mempool/app"
	"github.com/fd1az/mempool-block/internal/di"
)

// Public service tokens - exposed to other modules
var (
	FeedFactory = di.NewToken[*app.FeedFactory]("mempool.FeedFactory")
)

// Private dependency tokens - internal to mempool module
var (
	SnapshotFetcher = di.NewToken[app.SnapshotFetcher]("mempool:snapshotFetcher")
	PushStream      = di.NewToken[app.PushStream]("mempool:pushStream")
)

func GetFeedFactory(c di.ServiceRegistry) *app.FeedFactory {
	return di.GetToken(c, FeedFactory)
}

func GetSnapshotFetcher(c di.ServiceRegistry) app.SnapshotFetcher {
	return di.GetToken(c, SnapshotFetcher)
}

func GetPushStream(c di.ServiceRegistry) app.PushStream {
	return di.GetToken(c, PushStream)
}
