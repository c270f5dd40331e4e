package apns

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"
)

// Priorities accepted in the apns-priority header.
const (
	PriorityImmediate = 10
	PriorityConserve  = 5
)

// Push types sent in the apns-push-type header.
const (
	PushTypeAlert      = "alert"
	PushTypeBackground = "background"
)

// DefaultSound is played unless another sound name is set.
const DefaultSound = "default"

const apsKey = "aps"

// InterruptionLevel is the importance and delivery timing of a notification.
type InterruptionLevel string

// Interruption levels. The empty level leaves the key out of the payload.
const (
	InterruptionLevelUnset         InterruptionLevel = ""
	InterruptionLevelPassive       InterruptionLevel = "passive"
	InterruptionLevelActive        InterruptionLevel = "active"
	InterruptionLevelTimeSensitive InterruptionLevel = "time-sensitive"
	InterruptionLevelCritical      InterruptionLevel = "critical"
)

// Valid reports whether l is one of the known levels.
func (l InterruptionLevel) Valid() bool {
	switch l {
	case InterruptionLevelUnset, InterruptionLevelPassive, InterruptionLevelActive,
		InterruptionLevelTimeSensitive, InterruptionLevelCritical:
		return true
	}
	return false
}

// Payload is the content of one notification. Setters validate eagerly so an
// invalid value is reported where it is set and never at send time.
type Payload struct {
	title          string
	subtitle       string
	body           string
	launchImage    string
	badge          *int
	critical       bool
	sound          string
	volume         *float64
	category       string
	threadID       string
	mutable        bool
	contentAvail   bool
	priority       int
	interruption   InterruptionLevel
	relevanceScore *float64
	data           map[string]string
}

// NewPayload returns a payload with the default sound and immediate priority.
func NewPayload() *Payload {
	return &Payload{
		sound:    DefaultSound,
		priority: PriorityImmediate,
		data:     make(map[string]string),
	}
}

// SetTitle sets the alert title. It is only sent together with a body.
func (p *Payload) SetTitle(title string) { p.title = title }

// SetSubtitle sets the alert subtitle. It is only sent together with a body.
func (p *Payload) SetSubtitle(subtitle string) { p.subtitle = subtitle }

// SetBody sets the alert message. Without a body the notification is a background push.
func (p *Payload) SetBody(body string) { p.body = body }

// SetLaunchImage sets the launch image file name. It is only sent together with a body.
func (p *Payload) SetLaunchImage(name string) { p.launchImage = name }

// SetBadge sets the app icon badge. Zero clears the badge on the device.
func (p *Payload) SetBadge(n int) { p.badge = &n }

// ClearBadge leaves the badge untouched on the device.
func (p *Payload) ClearBadge() { p.badge = nil }

// SetCritical turns the sound into a critical alert sound.
func (p *Payload) SetCritical(critical bool) { p.critical = critical }

// SetSound sets the sound name.
func (p *Payload) SetSound(name string) { p.sound = name }

// SetCategory sets the notification category for actionable notifications.
func (p *Payload) SetCategory(category string) { p.category = category }

// SetThreadID sets the identifier used to group notifications.
func (p *Payload) SetThreadID(id string) { p.threadID = id }

// SetMutableContent lets a notification service extension modify the content.
func (p *Payload) SetMutableContent(mutable bool) { p.mutable = mutable }

// SetContentAvailable marks a silent background update.
func (p *Payload) SetContentAvailable(available bool) { p.contentAvail = available }

// SetSoundVolume sets the volume of a critical alert sound, from 0.0 (silent) to 1.0.
func (p *Payload) SetSoundVolume(v float64) error {
	if !p.critical {
		return invalid("sound volume", "can't set sound volume on non-critical notifications, call SetCritical(true) first")
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return invalid("sound volume", "%v is out of range [0.0, 1.0]", v)
	}
	p.volume = &v
	return nil
}

// SetPriority sets the apns-priority header. Only 10 and 5 are accepted.
func (p *Payload) SetPriority(v int) error {
	if v != PriorityImmediate && v != PriorityConserve {
		return invalid("priority", "%d is not %d or %d", v, PriorityImmediate, PriorityConserve)
	}
	p.priority = v
	return nil
}

// SetInterruptionLevel sets the interruption level.
func (p *Payload) SetInterruptionLevel(l InterruptionLevel) error {
	if !l.Valid() {
		return invalid("interruption level", "%q is not one of passive, active, time-sensitive, critical", string(l))
	}
	p.interruption = l
	return nil
}

// SetRelevanceScore sets the score used to sort notification summaries.
func (p *Payload) SetRelevanceScore(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return invalid("relevance score", "%v is out of range [0.0, 1.0]", v)
	}
	p.relevanceScore = &v
	return nil
}

// AddData adds a custom key sent next to the aps dictionary.
func (p *Payload) AddData(key, value string) error {
	if key == "" {
		return invalid("data key", "must not be empty")
	}
	if strings.EqualFold(key, apsKey) {
		return invalid("data key", "%q is reserved for the notification itself", key)
	}
	p.data[key] = value
	return nil
}

// Body returns the alert message.
func (p *Payload) Body() string { return p.body }

// Priority returns the apns-priority value.
func (p *Payload) Priority() int { return p.priority }

// PushType returns alert when a body is set and background otherwise.
func (p *Payload) PushType() string {
	if p.body != "" {
		return PushTypeAlert
	}
	return PushTypeBackground
}

// Data returns a copy of the custom keys.
func (p *Payload) Data() map[string]string {
	m := make(map[string]string, len(p.data))
	for k, v := range p.data {
		m[k] = v
	}
	return m
}

type aps struct {
	Alert             *alert            `json:"alert,omitempty"`
	Badge             *int              `json:"badge,omitempty"`
	Sound             interface{}       `json:"sound,omitempty"`
	ThreadID          string            `json:"thread-id,omitempty"`
	Category          string            `json:"category,omitempty"`
	MutableContent    int               `json:"mutable-content,omitempty"`
	ContentAvailable  int               `json:"content-available,omitempty"`
	InterruptionLevel InterruptionLevel `json:"interruption-level,omitempty"`
	RelevanceScore    *float64          `json:"relevance-score,omitempty"`
}

type alert struct {
	Body        string `json:"body"`
	Title       string `json:"title,omitempty"`
	Subtitle    string `json:"subtitle,omitempty"`
	LaunchImage string `json:"launch-image,omitempty"`
}

type criticalSound struct {
	Critical int      `json:"critical"`
	Name     string   `json:"name"`
	Volume   *float64 `json:"volume,omitempty"`
}

func (p *Payload) aps() aps {
	a := aps{
		Badge:             p.badge,
		ThreadID:          p.threadID,
		Category:          p.category,
		InterruptionLevel: p.interruption,
		RelevanceScore:    p.relevanceScore,
	}
	if p.body != "" {
		a.Alert = &alert{
			Body:        p.body,
			Title:       p.title,
			Subtitle:    p.subtitle,
			LaunchImage: p.launchImage,
		}
	}
	if p.critical {
		a.Sound = criticalSound{Critical: 1, Name: p.sound, Volume: p.volume}
	} else if p.sound != "" {
		a.Sound = p.sound
	}
	if p.mutable {
		a.MutableContent = 1
	}
	if p.contentAvail {
		a.ContentAvailable = 1
	}
	return a
}

// MarshalJSON for Payload struct. The aps dictionary comes first, followed by
// the custom keys in sorted order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer

	apsJSON, err := json.Marshal(p.aps())
	if err != nil {
		return nil, err
	}
	b.WriteString(`{"aps":`)
	b.Write(apsJSON)

	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kj, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vj, err := json.Marshal(p.data[k])
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(kj)
		b.WriteByte(':')
		b.Write(vj)
	}
	b.WriteByte('}')

	return b.Bytes(), nil
}
