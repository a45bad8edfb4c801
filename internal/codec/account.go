package codec

import "hospital-records/internal/domain/entity"

var accountFields = []string{"username", "passwordHash", "role", "isActive", "createdDate"}

type accountCodec struct {
	opts options
}

// NewAccountCodec encodes username|passwordHash|role|isActive|createdDate.
func NewAccountCodec(opts ...Option) Codec[entity.Account] {
	return &accountCodec{opts: newOptions(opts)}
}

func (c *accountCodec) Entity() string   { return "Account" }
func (c *accountCodec) Fields() []string { return accountFields }

func (c *accountCodec) Encode(a entity.Account) string {
	return join(a.Username, a.PasswordHash, string(a.Role), formatFlag(a.IsActive), a.CreatedDate)
}

func (c *accountCodec) Decode(line string) (entity.Account, error) {
	r, err := split(c.Entity(), accountFields, line)
	if err != nil {
		return entity.Account{}, err
	}

	a := entity.Account{
		Username:     r.required(0),
		PasswordHash: r.required(1),
		IsActive:     r.flag(3),
		CreatedDate:  r.date(4, false),
	}
	// Role decides what the account may do, so an unknown role is rejected rather than defaulted.
	if a.Role = entity.ParseRole(r.required(2)); a.Role == entity.RoleUnknown {
		r.fail(2, "unknown role")
	}
	return a, r.result()
}
