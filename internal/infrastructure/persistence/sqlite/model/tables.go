package model

// All returns every table the service owns, in migration order.
func All() []any {
	return []any{
		&Switchgear{},
		&PendingSwitchgear{},
		&ApprovalLog{},
		&User{},
		&KVCache{},
	}
}
