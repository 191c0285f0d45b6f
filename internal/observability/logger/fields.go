package logger

import "go.uber.org/zap"

// Campos estándar - HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// Campos estándar - negocio / auth

func UserID(v string) zap.Field    { return zap.String("user_id", v) }
func FamilyID(v string) zap.Field  { return zap.String("family_id", v) }
func TokenID(v string) zap.Field   { return zap.String("token_id", v) }
func TeamID(v string) zap.Field    { return zap.String("team_id", v) }
func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Count(v int) zap.Field        { return zap.Int("count", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Any(k string, v any) zap.Field { return zap.Any(k, v) }
