package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	BadGateway          = 502
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrValidation        = errors.New("字段校验失败")
	ErrUnauthorized      = errors.New("权限不足")
	ErrUnauthenticated   = errors.New("请先登录")
	ErrPostNotFound      = errors.New("帖子不存在")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUserExist         = errors.New("用户已存在")
	ErrPasswordIncorrect = errors.New("邮箱或密码错误")
	ErrFileNotSupported  = errors.New("不支持的文件类型")
	ErrStoreUnavailable  = errors.New("数据存储不可用")
	ErrExternalService   = errors.New("外部服务异常")
	ErrLookupSuperseded  = errors.New("查询已被新的请求取代")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrValidation:        BadRequest,
	ErrUnauthorized:      Forbidden,
	ErrUnauthenticated:   Unauthorized,
	ErrPostNotFound:      NotFound,
	ErrUserNotFound:      NotFound,
	ErrUserExist:         Conflict,
	ErrPasswordIncorrect: Unauthorized,
	ErrFileNotSupported:  BadRequest,
	ErrStoreUnavailable:  InternalServerError,
	ErrExternalService:   BadGateway,
	ErrLookupSuperseded:  Conflict,
	UnExpectedError:      InternalServerError,
}
