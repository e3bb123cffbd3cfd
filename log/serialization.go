package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
)

// LogMessageWire is the JSON line written for one log record.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Job       string        `json:"job,omitempty"`
	Source    string        `json:"source,omitempty"`
}

// LogAttrWire represents a single slog attribute.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"` // "string", "int64", "errno", "bytes", "json", ...
	Value string `json:"value"`
}

// appendAttr flattens attr into dst, qualifying keys with prefix. Groups
// contribute their members under "group.key"; empty attributes are dropped.
func appendAttr(dst []LogAttrWire, prefix string, attr slog.Attr) []LogAttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		group := prefix
		if attr.Key != "" {
			group += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendAttr(dst, group, member)
		}
		return dst
	}
	wire := toLogAttrWire(attr)
	wire.Key = prefix + wire.Key
	return append(dst, wire)
}

// toLogAttrWire converts a slog.Attr to LogAttrWire. Errors that carry a
// host error code are tagged "errno" so the code survives as a field.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{Key: attr.Key, Type: "any"}
	v := attr.Value.Resolve()

	switch v.Kind() {
	case slog.KindString:
		wire.Type, wire.Value = "string", v.String()
	case slog.KindInt64:
		wire.Type, wire.Value = "int64", strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		wire.Type, wire.Value = "uint64", strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		wire.Type, wire.Value = "bool", strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		wire.Type, wire.Value = "float64", strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type, wire.Value = "time", v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type, wire.Value = "duration", v.Duration().String()
	case slog.KindGroup:
		wire.Type, wire.Value = "group", fmt.Sprint(v.Any())
	default:
		anyValue(&wire, v.Any())
	}
	return wire
}

func anyValue(wire *LogAttrWire, v any) {
	switch x := v.(type) {
	case nil:
		wire.Value = "<nil>"
	case entities.Errno:
		wire.Type, wire.Value = "errno", strconv.Itoa(int(x))
	case error:
		wire.Type, wire.Value = "error", x.Error()
		if _, ok := errors.ErrnoOf(x); ok {
			wire.Type = "errno"
		}
	case []byte:
		// Job arguments and paths arrive as raw bytes.
		wire.Type, wire.Value = "bytes", strconv.Quote(string(x))
	default:
		if data, err := json.Marshal(x); err == nil {
			wire.Type, wire.Value = "json", string(data)
		} else {
			wire.Value = fmt.Sprint(x)
		}
	}
}
