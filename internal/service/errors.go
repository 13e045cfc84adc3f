package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrCountInvalid        = errors.New("计数必须为正整数")
	ErrChallengeNotFound   = errors.New("挑战不存在")
	ErrChallengeNotActive  = errors.New("挑战已结束或不可提交")
	ErrChallengeDisabled   = errors.New("挑战未开放")
	ErrProgressNotFound    = errors.New("进度记录不存在")
	ErrCollabStatsNotFound = errors.New("协作统计不存在")
	ErrStorageUnavailable  = errors.New("存储暂不可用，请稍后重试")
	UnauthorizedError      = errors.New("权限不足")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrCountInvalid:        BadRequest,
	ErrChallengeNotFound:   NotFound,
	ErrChallengeNotActive:  BadRequest,
	ErrChallengeDisabled:   BadRequest,
	ErrProgressNotFound:    NotFound,
	ErrCollabStatsNotFound: NotFound,
	ErrStorageUnavailable:  InternalServerError,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}
