package codec

import "hospital-records/internal/domain/entity"

var auditFields = []string{"timestamp", "actor", "action", "entity", "entityID", "detail"}

type auditCodec struct{}

// NewAuditCodec encodes audit trail entries.
func NewAuditCodec() Codec[entity.AuditEntry] {
	return &auditCodec{}
}

func (c *auditCodec) Entity() string   { return "Audit" }
func (c *auditCodec) Fields() []string { return auditFields }

func (c *auditCodec) Encode(e entity.AuditEntry) string {
	return join(e.Timestamp, e.Actor, e.Action, e.Entity, e.EntityID, e.Detail)
}

func (c *auditCodec) Decode(line string) (entity.AuditEntry, error) {
	r, err := split(c.Entity(), auditFields, line)
	if err != nil {
		return entity.AuditEntry{}, err
	}
	e := entity.AuditEntry{
		Timestamp: r.required(0),
		Actor:     r.optional(1),
		Action:    r.required(2),
		Entity:    r.optional(3),
		EntityID:  r.optional(4),
		Detail:    r.optional(5),
	}
	return e, r.result()
}
