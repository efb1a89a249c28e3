package progress

import "errors"

var (
	ErrNoSubscriber = errors.New("no subscriber for user")
	ErrBufferFull   = errors.New("subscriber buffer full")
	ErrMissingUser  = errors.New("user id required")
	ErrClosed       = errors.New("progress hub closed")
)
