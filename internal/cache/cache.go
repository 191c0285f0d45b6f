package cache

import "time"

// Cache es un cache de bytes con TTL. El resolver RBAC guarda entradas
// serializadas (JSON) así el backend puede ser memoria o redis sin que
// el resolver cambie.
type Cache interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)

	// Flush elimina todas las entradas del backend (en redis, las del
	// prefijo configurado). Usado por InvalidateAll.
	Flush()
}
