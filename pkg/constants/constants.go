package constants

import "github.com/go-playground/validator/v10"

var Validate = validator.New()

type ContextKey string

const (
	AppKey       ContextKey = "app"
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
	PrincipalKey ContextKey = "principal"
)
