package integration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOkEntity(t *testing.T) {
	r := OkEntity(42, ActionCreated, "", nil)

	assert.True(t, r.IsSuccess())
	id, ok := r.PrimaryID()
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	assert.Equal(t, ActionCreated, r.PrimaryAction())
}

func TestOkEntity_NumericCoercion(t *testing.T) {
	id, ok := OkEntity("17", ActionUpdated, "", nil).PrimaryID()
	assert.True(t, ok)
	assert.Equal(t, 17, id)

	_, ok = OkEntity("abc", ActionUpdated, "", nil).PrimaryID()
	assert.False(t, ok)

	_, ok = OkEntity(nil, ActionSkipped, "", nil).PrimaryID()
	assert.False(t, ok)
}

func TestFail_HasNoIdentity(t *testing.T) {
	r := Fail("boom", map[string]any{keyID: 42, keyCreatureID: 7, keyAction: "created"})

	assert.False(t, r.IsSuccess())
	assert.Equal(t, "boom", r.Message())
	_, ok := r.PrimaryID()
	assert.False(t, ok)
	_, ok = r.CreatureID()
	assert.False(t, ok)
	_, ok = r.MonsterID()
	assert.False(t, ok)
	assert.Empty(t, r.PrimaryAction())
	assert.Nil(t, r.Err())
	assert.Equal(t, 42, r.Data()[keyID])
}

func TestFailErr(t *testing.T) {
	cause := errors.New("db gone")
	r := FailErr(cause, nil)
	assert.False(t, r.IsSuccess())
	assert.ErrorIs(t, r.Err(), cause)
	assert.Equal(t, "db gone", r.Message())
}

func TestOk_Composite(t *testing.T) {
	c, m := 3, 9
	r := Ok(&c, &m, ActionCreated, ActionUpdated, "done", map[string]any{"entity": "monster"})

	cid, ok := r.CreatureID()
	assert.True(t, ok)
	assert.Equal(t, 3, cid)
	mid, ok := r.MonsterID()
	assert.True(t, ok)
	assert.Equal(t, 9, mid)
	assert.Equal(t, ActionCreated, r.CreatureAction())
	assert.Equal(t, ActionUpdated, r.MonsterAction())

	pid, ok := r.PrimaryID()
	assert.True(t, ok)
	assert.Equal(t, 9, pid)
	assert.Equal(t, ActionUpdated, r.PrimaryAction())

	r2 := Ok(nil, &m, ActionSkipped, ActionSkipped, "", nil)
	_, ok = r2.CreatureID()
	assert.False(t, ok)
}

func TestResult_DataIsCopied(t *testing.T) {
	in := map[string]any{"k": "v"}
	r := OkEntity(1, ActionCreated, "", in)
	in["k"] = "changed"

	out := r.Data()
	assert.Equal(t, "v", out["k"])
	out["k"] = "mutated"
	assert.Equal(t, "v", r.Data()["k"])
}

func TestResult_MarshalJSON(t *testing.T) {
	raw, err := OkEntity(5, ActionCreated, "spell 5 created", nil).MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"spell 5 created","data":{"id":5,"action":"created"}}`, string(raw))
}
