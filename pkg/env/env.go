// Package env fills configuration structs from environment variables
// described by struct tags:
//
//	Token string        `env:"CALCBOT_TELEGRAM_TOKEN,required"`
//	TTL   time.Duration `env:"CALCBOT_SESSION_TTL_TIMEOUT" env-default:"20m"`
//	Chats []int64       `env:"CALCBOT_CHATS" env-separator:";"`
package env

import (
	"encoding"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	TagValue     = "env"
	TagDefault   = "env-default"
	TagSeparator = "env-separator"

	defaultSeparator = ","
)

var (
	ErrNotStruct   = errors.New("config must be a struct")
	ErrRequired    = errors.New("required but the value is not provided")
	ErrUnsupported = errors.New("unsupported field type")
)

// LookupFunc resolves a variable name the way os.LookupEnv does.
type LookupFunc func(string) (string, bool)

// Reader fills structs using values from Lookup.
type Reader struct {
	Lookup LookupFunc
}

// NewReader returns a Reader backed by lookup.
func NewReader(lookup LookupFunc) *Reader {
	return &Reader{Lookup: lookup}
}

// Read fills root from the process environment.
func Read(root any) error {
	return NewReader(os.LookupEnv).Read(root)
}

type parseFunc func(reflect.Value, string) error

var parsers = map[reflect.Type]parseFunc{
	reflect.TypeOf(time.Duration(0)): func(v reflect.Value, s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
		return nil
	},

	reflect.TypeOf(url.URL{}): func(v reflect.Value, s string) error {
		u, err := url.Parse(s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*u))
		return nil
	},

	reflect.TypeOf(time.Location{}): func(v reflect.Value, s string) error {
		loc, err := time.LoadLocation(s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*loc))
		return nil
	},
}

// Read fills the exported, tagged fields of root, which must point to a
// struct. Nested structs are read recursively.
func (r *Reader) Read(root any) error {
	rootValue := reflect.ValueOf(root)
	if rootValue.Kind() == reflect.Ptr {
		rootValue = rootValue.Elem()
	}
	if rootValue.Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %v", ErrNotStruct, rootValue.Kind())
	}
	return r.readStruct(rootValue)
}

func (r *Reader) readStruct(structValue reflect.Value) error {
	structType := structValue.Type()
	for i := 0; i < structValue.NumField(); i++ {
		field := structType.Field(i)
		value := structValue.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, tagged := field.Tag.Lookup(TagValue)
		if !tagged {
			if value.Kind() == reflect.Ptr && value.Type().Elem().Kind() == reflect.Struct {
				if value.IsNil() {
					value.Set(reflect.New(value.Type().Elem()))
				}
				value = value.Elem()
			}
			if value.Kind() == reflect.Struct && parsers[value.Type()] == nil {
				if err := r.readStruct(value); err != nil {
					return err
				}
			}
			continue
		}

		name, options := parseTag(tag)
		raw, found := r.Lookup(name)
		if !found {
			if options.Contains("required") {
				return fmt.Errorf("environment variable %s is %w", name, ErrRequired)
			}
			def, hasDef := field.Tag.Lookup(TagDefault)
			if !hasDef {
				continue
			}
			raw = def
		}

		sep, hasSep := field.Tag.Lookup(TagSeparator)
		if !hasSep {
			sep = defaultSeparator
		}
		if err := parseValue(value, raw, sep); err != nil {
			return fmt.Errorf("can't parse environment variable %s: %w", name, err)
		}
	}
	return nil
}

func parseValue(value reflect.Value, raw, sep string) error {
	if parser, ok := parsers[value.Type()]; ok {
		return parser(value, raw)
	}

	if value.CanAddr() {
		if u, ok := value.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(raw))
		}
	}

	switch value.Kind() {
	case reflect.String:
		value.SetString(raw)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		value.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 0, value.Type().Bits())
		if err != nil {
			return err
		}
		value.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 0, value.Type().Bits())
		if err != nil {
			return err
		}
		value.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, value.Type().Bits())
		if err != nil {
			return err
		}
		value.SetFloat(f)

	case reflect.Slice:
		return parseSlice(value, raw, sep)

	case reflect.Map:
		return parseMap(value, raw, sep)

	case reflect.Ptr:
		if value.IsNil() {
			value.Set(reflect.New(value.Type().Elem()))
		}
		return parseValue(value.Elem(), raw, sep)

	default:
		return fmt.Errorf("%w %s", ErrUnsupported, value.Kind())
	}
	return nil
}

func parseSlice(value reflect.Value, raw, sep string) error {
	if strings.TrimSpace(raw) == "" {
		value.Set(reflect.MakeSlice(value.Type(), 0, 0))
		return nil
	}

	items := strings.Split(raw, sep)
	slice := reflect.MakeSlice(value.Type(), len(items), len(items))
	for i, item := range items {
		if err := parseValue(slice.Index(i), strings.TrimSpace(item), sep); err != nil {
			return err
		}
	}
	value.Set(slice)
	return nil
}

func parseMap(value reflect.Value, raw, sep string) error {
	mapType := value.Type()
	m := reflect.MakeMap(mapType)
	if strings.TrimSpace(raw) != "" {
		for _, pair := range strings.Split(raw, sep) {
			k, v, ok := strings.Cut(pair, ":")
			if !ok {
				return fmt.Errorf("invalid map item %q", pair)
			}

			key := reflect.New(mapType.Key()).Elem()
			if err := parseValue(key, k, sep); err != nil {
				return err
			}
			elem := reflect.New(mapType.Elem()).Elem()
			if err := parseValue(elem, v, sep); err != nil {
				return err
			}
			m.SetMapIndex(key, elem)
		}
	}
	value.Set(m)
	return nil
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	name, opt, _ := strings.Cut(tag, ",")
	return name, tagOptions(opt)
}

func (o tagOptions) Contains(option string) bool {
	s := string(o)
	for s != "" {
		var name string
		name, s, _ = strings.Cut(s, ",")
		if name == option {
			return true
		}
	}
	return false
}
