package naming

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/json-iterator/go/extra"
)

var (
	registerOnce sync.Once
	api          jsoniter.API
)

// JSON returns the codec used on the wire. Struct fields without an explicit
// json tag are named with SnakeCase; tagged fields keep their tag.
//
// The naming strategy is a process-wide jsoniter extension, so it is
// registered once before the first config is frozen.
func JSON() jsoniter.API {
	registerOnce.Do(func() {
		extra.SetNamingStrategy(SnakeCase)
		api = jsoniter.Config{
			EscapeHTML:             true,
			SortMapKeys:            true,
			ValidateJsonRawMessage: true,
			CaseSensitive:          true,
		}.Froze()
	})
	return api
}

// Marshal encodes v with the SnakeCase field naming.
func Marshal(v any) ([]byte, error) {
	return JSON().Marshal(v)
}

// Unmarshal decodes SnakeCase JSON into v, which must be a non-nil pointer.
// Keys that match no field are ignored.
func Unmarshal(data []byte, v any) error {
	return JSON().Unmarshal(data, v)
}
