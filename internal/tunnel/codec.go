package tunnel

import (
	"errors"
	"fmt"
	"minimap_sync/internal/dataType"
	"regexp"
	"strconv"
	"strings"
)

const (
	// ZeroWidthOpen and ZeroWidthClose hide the frame in the game chat renderer
	ZeroWidthOpen  = "<size=0>"
	ZeroWidthClose = "</size>"

	// DefaultChannelTag identifies this mod's tunnel among other chat traffic
	DefaultChannelTag = "Tyzeron.Minimap"

	fieldDelimiter = "/"
	// printable ASCII without the delimiter
	fieldClass = `[ -.0-~]+`
)

var ErrInvalidField = errors.New("invalid frame field")

// Codec converts control frames to and from chat text
type Codec struct {
	tag    string
	parser *regexp.Regexp
}

func NewCodec(channelTag string) (*Codec, error) {
	if channelTag == "" {
		return nil, fmt.Errorf("%w: empty channel tag", ErrInvalidField)
	}
	if err := checkField(channelTag); err != nil {
		return nil, fmt.Errorf("channel tag %q: %w", channelTag, err)
	}

	pattern := `\A` + regexp.QuoteMeta(ZeroWidthOpen+channelTag) +
		`/(` + fieldClass + `)/(` + fieldClass + `)/(` + fieldClass + `)` +
		regexp.QuoteMeta(ZeroWidthClose) + `\z`
	parser, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	return &Codec{tag: channelTag, parser: parser}, nil
}

func (c *Codec) Tag() string {
	return c.tag
}

// Encode builds the wire text for a frame. Fields that could not be decoded
// back unambiguously are rejected instead of being escaped.
func (c *Codec) Encode(originID int, signature, payload string) (string, error) {
	if originID < 0 {
		return "", fmt.Errorf("%w: negative origin id %d", ErrInvalidField, originID)
	}
	if payload == "" {
		payload = dataType.NullPayload
	}
	if err := checkField(signature); err != nil {
		return "", fmt.Errorf("signature %q: %w", signature, err)
	}
	if err := checkField(payload); err != nil {
		return "", fmt.Errorf("payload %q: %w", payload, err)
	}

	var b strings.Builder
	b.Grow(len(ZeroWidthOpen) + len(c.tag) + len(signature) + len(payload) + len(ZeroWidthClose) + 16)
	b.WriteString(ZeroWidthOpen)
	b.WriteString(c.tag)
	b.WriteString(fieldDelimiter)
	b.WriteString(strconv.Itoa(originID))
	b.WriteString(fieldDelimiter)
	b.WriteString(signature)
	b.WriteString(fieldDelimiter)
	b.WriteString(payload)
	b.WriteString(ZeroWidthClose)
	return b.String(), nil
}

// Decode matches the whole text against the frame shape. Anything else is plain chat.
func (c *Codec) Decode(text string) (dataType.ControlFrame, bool) {
	m := c.parser.FindStringSubmatch(text)
	if m == nil {
		return dataType.ControlFrame{}, false
	}
	// only the canonical decimal form, as Encode writes it
	originID, err := strconv.Atoi(m[1])
	if err != nil || originID < 0 || strconv.Itoa(originID) != m[1] {
		return dataType.ControlFrame{}, false
	}
	return dataType.ControlFrame{
		OriginID:  originID,
		Signature: m[2],
		Payload:   m[3],
	}, true
}

func checkField(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidField)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] > '~' {
			return fmt.Errorf("%w: non-printable byte 0x%02x at %d", ErrInvalidField, s[i], i)
		}
	}
	if strings.Contains(s, fieldDelimiter) {
		return fmt.Errorf("%w: contains delimiter %q", ErrInvalidField, fieldDelimiter)
	}
	if strings.Contains(s, ZeroWidthOpen) {
		return fmt.Errorf("%w: contains marker %q", ErrInvalidField, ZeroWidthOpen)
	}
	return nil
}
