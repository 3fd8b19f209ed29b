package linkcheck

import "errors"

// Причины отказа. Текст ошибки используется как машинный код причины.
var (
	ErrURLRequired      = errors.New("url_required")
	ErrURLTooLong       = errors.New("url_too_long")
	ErrInvalidFormat    = errors.New("invalid_format")
	ErrBlockedScheme    = errors.New("blocked_scheme")
	ErrSchemeNotAllowed = errors.New("scheme_not_allowed")
	ErrMissingHost      = errors.New("missing_host")
	ErrSuspicious       = errors.New("suspicious")
	ErrSelfReference    = errors.New("self_reference")
	ErrPrivateIP        = errors.New("private_ip")
	ErrInvalidIP        = errors.New("invalid_ip")
	ErrPortNotAllowed   = errors.New("port_not_allowed")
	ErrInvalidPort      = errors.New("invalid_port")
	ErrPathTooLong      = errors.New("path_too_long")
)

// Rejection описывает отказ в приёме URL: сообщение для пользователя плюс причина.
type Rejection struct {
	reason  error
	message string
}

func reject(reason error, message string) *Rejection {
	return &Rejection{reason: reason, message: message}
}

func (r *Rejection) Error() string {
	return r.message
}

func (r *Rejection) Unwrap() error {
	return r.reason
}

// Code возвращает стабильный код причины, например "private_ip".
func (r *Rejection) Code() string {
	return r.reason.Error()
}
