// Package redis opens the go-redis client used for send locks and the
// newsletter preview cache. It accepts redis:// and rediss:// URLs and retries
// the first ping while the server comes up.
package redis
