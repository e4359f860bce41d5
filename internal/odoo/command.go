package odoo

import (
	"encoding/json"
	"fmt"
)

// Relational writes on one2many/many2many fields use Odoo's indexed command
// tuples, e.g. [0, 0, {...}] to create a linked record or [6, 0, [ids]] to
// replace the link set. Command keeps the command code and its payload
// together instead of scattering positional arrays through call sites.
type Command struct {
	code   int
	fields map[string]any
	ids    []int64
}

const (
	commandCreate     = 0
	commandReplaceAll = 6
)

// CreateRecord returns a command that creates a new linked record with the
// given fields.
func CreateRecord(fields map[string]any) Command {
	return Command{code: commandCreate, fields: fields}
}

// ReplaceAll returns a command that replaces the field's link set with
// exactly the given ids.
func ReplaceAll(ids []int64) Command {
	if ids == nil {
		ids = []int64{}
	}
	return Command{code: commandReplaceAll, ids: ids}
}

// MarshalJSON encodes the command as its wire tuple.
func (c Command) MarshalJSON() ([]byte, error) {
	switch c.code {
	case commandCreate:
		return json.Marshal([]any{commandCreate, 0, c.fields})
	case commandReplaceAll:
		return json.Marshal([]any{commandReplaceAll, 0, c.ids})
	default:
		return nil, fmt.Errorf("unknown relational command code %d", c.code)
	}
}
