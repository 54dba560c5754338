package protocol_test

import (
	"encoding/json"
	"testing"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	valid := map[string]string{
		protocol.TypeHello: `{
		  "type":"HELLO",
		  "protocol_version":"1.0",
		  "player_name":"alice",
		  "group":"builders",
		  "auth":{"token":"t"}
		}`,
		protocol.TypeAction: `{
		  "type":"ACTION",
		  "protocol_version":"1.0",
		  "req_id":"R1",
		  "action":"track_place",
		  "flags":2,
		  "params":{"ride":0,"origin":{"x":160,"y":160,"z":112},"direction":"west","track_type":0}
		}`,
	}
	for typ, raw := range valid {
		if err := v.Validate(typ, []byte(raw)); err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
	}

	invalid := []struct{ typ, raw string }{
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0"}`},
		{protocol.TypeAction, `{"type":"ACTION","protocol_version":"1.0","req_id":"R1"}`},
		{protocol.TypeAction, `{"type":"ACTION","protocol_version":"1.0","req_id":"R1","action":"Bad Name"}`},
		{protocol.TypeAction, `{"type":"ACTION","protocol_version":"1.0","req_id":"R1","action":"x","params":{"c":[1]}}`},
		{protocol.TypeAction, `{"type":"ACTION","protocol_version":"1.0","req_id":"R1","action":"x","params":{"n":1.5}}`},
		{protocol.TypeAction, `{"type":"ACTION","protocol_version":"1.0","req_id":"R1","action":"x","extra":true}`},
		{protocol.TypeAction, `{"type":"ACTION","protocol_`},
	}
	for _, c := range invalid {
		if err := v.Validate(c.typ, []byte(c.raw)); err == nil {
			t.Fatalf("expected rejection: %s", c.raw)
		}
	}

	if err := v.Validate(protocol.TypeResult, []byte(`{}`)); err != nil {
		t.Fatalf("outbound types are not validated: %v", err)
	}
}

func TestNewResult(t *testing.T) {
	r := gameaction.Fail(gameaction.StatusNotOwned, 0, 0)
	r.Cost = 40
	m := protocol.NewResult("R1", 9, r)
	if m.Status != "not_owned" || m.Code != protocol.ErrRejected || m.Cost != 40 {
		t.Fatalf("unexpected result message: %+v", m)
	}

	ok := gameaction.Ok()
	ok.SetData(uint16(3))
	m = protocol.NewResult("R2", 9, ok)
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["status"] != "ok" || back["data"] != float64(3) {
		t.Fatalf("wire form: %s", b)
	}
	if _, has := back["code"]; has {
		t.Fatalf("ok results carry no code: %s", b)
	}
}
