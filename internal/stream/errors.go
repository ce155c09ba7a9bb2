package stream

import "errors"

var (
	// ErrStreamClosed — очередь запуска удалена и исчерпана.
	ErrStreamClosed = errors.New("stream: closed")

	// ErrPollTimeout — за интервал опроса событий не появилось.
	// Подписчик может опросить снова или отключиться.
	ErrPollTimeout = errors.New("stream: poll timeout")
)
