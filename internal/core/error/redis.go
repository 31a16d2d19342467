package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to the unified AppError type with appropriate
// status codes. A missing key is distinguished from infrastructure failure.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, StatusBadGateway, RedisErrorMessage)
}
