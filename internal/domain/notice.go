package domain

import "time"

type NoticeStatus string

const NoticeError NoticeStatus = "error"

const NoticeDuration = 6 * time.Second

type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      NoticeStatus  `json:"status"`
	Duration    time.Duration `json:"-"`
}
