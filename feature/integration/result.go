package integration

import (
	"krosmoz-scrapper/core/utils"

	"github.com/goccy/go-json"
)

// Action is what an integration did to one stored entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
)

const (
	keyID             = "id"
	keyAction         = "action"
	keyCreatureID     = "creature_id"
	keyMonsterID      = "monster_id"
	keyCreatureAction = "creature_action"
	keyMonsterAction  = "monster_action"
)

// Result is the immutable outcome of one integration attempt.
// Build it with Ok, OkEntity, Fail or FailErr and branch on IsSuccess before
// reading identities.
type Result struct {
	success bool
	message string
	data    map[string]any
	err     error
}

// Ok reports a composite creature and monster integration.
func Ok(creatureID, monsterID *int, creatureAction, monsterAction Action, message string, data map[string]any) Result {
	d := clone(data)
	if creatureID != nil {
		d[keyCreatureID] = *creatureID
	}
	if monsterID != nil {
		d[keyMonsterID] = *monsterID
	}
	d[keyCreatureAction] = string(creatureAction)
	d[keyMonsterAction] = string(monsterAction)
	return Result{success: true, message: message, data: d}
}

// OkEntity reports a single entity integration. id may be any numeric value
// or numeric string; nil means the entity was not stored.
func OkEntity(id any, action Action, message string, data map[string]any) Result {
	d := clone(data)
	if id != nil {
		d[keyID] = id
	}
	d[keyAction] = string(action)
	return Result{success: true, message: message, data: d}
}

// Fail reports a failed integration.
func Fail(message string, data map[string]any) Result {
	return Result{message: message, data: clone(data)}
}

// FailErr reports a failed integration caused by err.
func FailErr(err error, data map[string]any) Result {
	return Result{message: err.Error(), data: clone(data), err: err}
}

func (r Result) IsSuccess() bool { return r.success }

func (r Result) Message() string { return r.message }

// Err is the cause of a FailErr result, nil otherwise.
func (r Result) Err() error { return r.err }

// Data returns a copy of the diagnostic data.
func (r Result) Data() map[string]any { return clone(r.data) }

func (r Result) CreatureID() (int, bool) { return r.intField(keyCreatureID) }

func (r Result) MonsterID() (int, bool) { return r.intField(keyMonsterID) }

func (r Result) CreatureAction() Action { return r.actionField(keyCreatureAction) }

func (r Result) MonsterAction() Action { return r.actionField(keyMonsterAction) }

// PrimaryID is the stored id of a single entity result, or the monster id of
// a composite one. ok is false for failures and non-numeric ids.
func (r Result) PrimaryID() (int, bool) {
	if id, ok := r.intField(keyID); ok {
		return id, true
	}
	return r.MonsterID()
}

// PrimaryAction is the action of a single entity result, or the monster
// action of a composite one.
func (r Result) PrimaryAction() Action {
	if a := r.actionField(keyAction); a != "" {
		return a
	}
	return r.MonsterAction()
}

func (r Result) intField(key string) (int, bool) {
	if !r.success {
		return 0, false
	}
	v, ok := r.data[key]
	if !ok || v == nil {
		return 0, false
	}
	return utils.ToIntOK(v)
}

func (r Result) actionField(key string) Action {
	if !r.success {
		return ""
	}
	s, _ := r.data[key].(string)
	return Action(s)
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool           `json:"success"`
		Message string         `json:"message,omitempty"`
		Data    map[string]any `json:"data,omitempty"`
	}{r.success, r.message, r.data})
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}
