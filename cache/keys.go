package cache

// Entity types. Each is the "<type>" half of its keys and contains no ':'.
const (
	EntityUser          = "user"
	EntityProject       = "project"
	EntityClient        = "client"
	EntityDesignConcept = "design_concept"
	EntityProduct       = "product"
)

// TTL tiers, in seconds.
const (
	TTLShort  = 300
	TTLMedium = 1800
	TTLLong   = 3600
	TTLDay    = 86400
)

// Entities lists every entity type with a key builder.
var Entities = []string{EntityUser, EntityProject, EntityClient, EntityDesignConcept, EntityProduct}

// Key returns "<entity>:<id>".
func Key(entity, id string) string {
	return entity + ":" + id
}

// Pattern returns the ClearPattern glob matching every key of entity.
func Pattern(entity string) string {
	return entity + ":*"
}

func UserKey(id string) string          { return Key(EntityUser, id) }
func ProjectKey(id string) string       { return Key(EntityProject, id) }
func ClientKey(id string) string        { return Key(EntityClient, id) }
func DesignConceptKey(id string) string { return Key(EntityDesignConcept, id) }
func ProductKey(id string) string       { return Key(EntityProduct, id) }

// RateLimitKey is the fixed-window counter of one client on one route.
func RateLimitKey(route, client string) string {
	return "ratelimit:" + route + ":" + client
}

// TokenVersionKey holds the token generation counter of subject.
func TokenVersionKey(subject string) string {
	return "tokver:" + subject
}
