package apns

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decode(t *testing.T, p *Payload) map[string]interface{} {
	t.Helper()
	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid json %s: %s", b, err)
	}
	return m
}

func TestMarshalSimpleAlert(t *testing.T) {
	p := NewPayload()
	p.SetBody("Hi")
	p.SetBadge(2)

	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if g, w := string(b), `{"aps":{"alert":{"body":"Hi"},"badge":2,"sound":"default"}}`; g != w {
		t.Errorf("unexpected payload:\ngot  %s\nwant %s", g, w)
	}
}

func TestMarshalCustomDataAppended(t *testing.T) {
	p := NewPayload()
	p.SetBody("Hi")
	p.SetBadge(2)
	for k, v := range map[string]string{"uid": "42", "a": "first", "z": "last"} {
		if err := p.AddData(k, v); err != nil {
			t.Fatal(err)
		}
	}

	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	w := `{"aps":{"alert":{"body":"Hi"},"badge":2,"sound":"default"},"a":"first","uid":"42","z":"last"}`
	if string(b) != w {
		t.Errorf("unexpected payload:\ngot  %s\nwant %s", b, w)
	}
}

func TestMarshalFullPayload(t *testing.T) {
	p := NewPayload()
	p.SetTitle("Title")
	p.SetSubtitle("Sub")
	p.SetBody("Body")
	p.SetLaunchImage("launch.png")
	p.SetBadge(0)
	p.SetCritical(true)
	p.SetSound("alarm.caf")
	if err := p.SetSoundVolume(0.5); err != nil {
		t.Fatal(err)
	}
	p.SetThreadID("thread-1")
	p.SetCategory("MESSAGE")
	p.SetMutableContent(true)
	p.SetContentAvailable(true)
	if err := p.SetInterruptionLevel(InterruptionLevelTimeSensitive); err != nil {
		t.Fatal(err)
	}
	if err := p.SetRelevanceScore(0); err != nil {
		t.Fatal(err)
	}

	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	w := `{"aps":{"alert":{"body":"Body","title":"Title","subtitle":"Sub","launch-image":"launch.png"},` +
		`"badge":0,"sound":{"critical":1,"name":"alarm.caf","volume":0.5},"thread-id":"thread-1",` +
		`"category":"MESSAGE","mutable-content":1,"content-available":1,` +
		`"interruption-level":"time-sensitive","relevance-score":0}}`
	if string(b) != w {
		t.Errorf("unexpected payload:\ngot  %s\nwant %s", b, w)
	}
}

func TestMarshalAlertOnlyWithBody(t *testing.T) {
	p := NewPayload()
	p.SetTitle("title without body")
	p.SetSubtitle("subtitle without body")
	p.SetLaunchImage("image.png")

	m := decode(t, p)
	aps := m["aps"].(map[string]interface{})
	if _, ok := aps["alert"]; ok {
		t.Errorf("alert must be absent without body: %v", aps)
	}
	if g := p.PushType(); g != PushTypeBackground {
		t.Errorf("push type without body: got %s want %s", g, PushTypeBackground)
	}

	p.SetBody("now with body")
	aps = decode(t, p)["aps"].(map[string]interface{})
	expected := map[string]interface{}{
		"title":        "title without body",
		"subtitle":     "subtitle without body",
		"body":         "now with body",
		"launch-image": "image.png",
	}
	if diff := cmp.Diff(expected, aps["alert"]); diff != "" {
		t.Errorf("mismatch alert: diff: %s", diff)
	}
	if g := p.PushType(); g != PushTypeAlert {
		t.Errorf("push type with body: got %s want %s", g, PushTypeAlert)
	}
}

func TestMarshalAbsentFlags(t *testing.T) {
	p := NewPayload()
	p.SetMutableContent(false)
	p.SetContentAvailable(false)

	aps := decode(t, p)["aps"].(map[string]interface{})
	expected := map[string]interface{}{"sound": "default"}
	if diff := cmp.Diff(expected, aps); diff != "" {
		t.Errorf("only sound must be present: diff: %s", diff)
	}
}

func TestBadge(t *testing.T) {
	for _, n := range []int{0, 1, 99} {
		p := NewPayload()
		p.SetBadge(n)
		aps := decode(t, p)["aps"].(map[string]interface{})
		if g, ok := aps["badge"]; !ok || g != float64(n) {
			t.Errorf("badge %d: got %v", n, g)
		}

		p.ClearBadge()
		aps = decode(t, p)["aps"].(map[string]interface{})
		if g, ok := aps["badge"]; ok {
			t.Errorf("badge must be absent after ClearBadge: got %v", g)
		}
	}
}

func TestCriticalSoundWithoutVolume(t *testing.T) {
	p := NewPayload()
	p.SetCritical(true)

	aps := decode(t, p)["aps"].(map[string]interface{})
	expected := map[string]interface{}{"critical": float64(1), "name": "default"}
	if diff := cmp.Diff(expected, aps["sound"]); diff != "" {
		t.Errorf("mismatch critical sound: diff: %s", diff)
	}
}

func TestSetPriority(t *testing.T) {
	p := NewPayload()
	if g := p.Priority(); g != PriorityImmediate {
		t.Errorf("default priority: got %d", g)
	}
	for _, v := range []int{5, 10} {
		if err := p.SetPriority(v); err != nil {
			t.Errorf("priority %d must be accepted: %s", v, err)
		}
		if g := p.Priority(); g != v {
			t.Errorf("priority: got %d want %d", g, v)
		}
	}
	for _, v := range []int{-1, 0, 1, 4, 6, 9, 11, 100} {
		err := p.SetPriority(v)
		if KindOf(err) != KindValidation {
			t.Errorf("priority %d must be rejected: %v", v, err)
		}
	}
	if g := p.Priority(); g != 10 {
		t.Errorf("rejected priority must not be stored: got %d", g)
	}
}

func TestSetRelevanceScore(t *testing.T) {
	p := NewPayload()
	for _, v := range []float64{0, 0.25, 1} {
		if err := p.SetRelevanceScore(v); err != nil {
			t.Errorf("relevance score %v must be accepted: %s", v, err)
		}
	}
	for _, v := range []float64{-0.0001, 1.0001, -1, 2, math.NaN(), math.Inf(1)} {
		if err := p.SetRelevanceScore(v); KindOf(err) != KindValidation {
			t.Errorf("relevance score %v must be rejected: %v", v, err)
		}
	}
}

func TestSetSoundVolume(t *testing.T) {
	p := NewPayload()
	for _, v := range []float64{0, 0.5, 1, -1, 2} {
		if err := p.SetSoundVolume(v); KindOf(err) != KindValidation {
			t.Errorf("volume %v on non-critical payload must be rejected: %v", v, err)
		}
	}

	p.SetCritical(true)
	if err := p.SetSoundVolume(1); err != nil {
		t.Errorf("volume on critical payload must be accepted: %s", err)
	}
	if err := p.SetSoundVolume(1.5); KindOf(err) != KindValidation {
		t.Errorf("volume out of range must be rejected: %v", err)
	}

	// the volume is kept but only sent while critical
	p.SetCritical(false)
	aps := decode(t, p)["aps"].(map[string]interface{})
	if g := aps["sound"]; g != "default" {
		t.Errorf("sound of non-critical payload: got %v", g)
	}
}

func TestSetInterruptionLevel(t *testing.T) {
	p := NewPayload()
	for _, l := range []InterruptionLevel{
		InterruptionLevelPassive, InterruptionLevelActive, InterruptionLevelTimeSensitive,
		InterruptionLevelCritical, InterruptionLevelUnset,
	} {
		if err := p.SetInterruptionLevel(l); err != nil {
			t.Errorf("level %q must be accepted: %s", l, err)
		}
	}
	if _, ok := decode(t, p)["aps"].(map[string]interface{})["interruption-level"]; ok {
		t.Error("unset interruption level must be absent")
	}
	for _, l := range []InterruptionLevel{"urgent", "Critical", "time_sensitive"} {
		if err := p.SetInterruptionLevel(l); KindOf(err) != KindValidation {
			t.Errorf("level %q must be rejected: %v", l, err)
		}
	}
}

func TestAddDataReservedKey(t *testing.T) {
	p := NewPayload()
	for _, k := range []string{"aps", "APS", "Aps", ""} {
		err := p.AddData(k, "x")
		if KindOf(err) != KindValidation {
			t.Errorf("key %q must be rejected: %v", k, err)
		}
	}
	if len(p.Data()) != 0 {
		t.Errorf("rejected keys must not be stored: %v", p.Data())
	}
	if err := p.AddData("apsx", "ok"); err != nil {
		t.Errorf("key apsx must be accepted: %s", err)
	}
}

func TestMarshalDoesNotMutate(t *testing.T) {
	p := NewPayload()
	p.SetBody("Hi")
	p.AddData("k", "v")

	first, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("serialization is not deterministic:\n%s\n%s", first, second)
	}
}
