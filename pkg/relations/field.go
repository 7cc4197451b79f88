// Package relations models database-backed records: field and schema
// declarations, record buffers, criteria, relations between schemas, and the
// registry that binds schemas to storage sources.
package relations

// Kind enumerates the value kinds a field can hold. List and Dict values are
// stored JSON-encoded by sources.
type Kind int

// Field value kinds.
const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindStr
	KindList
	KindDict
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// Scalar reports whether values of this kind are stored as-is rather than
// JSON-encoded.
func (k Kind) Scalar() bool {
	return k != KindList && k != KindDict
}

// Field describes one attribute of a schema: its kind, storage column, and
// persistence behavior.
type Field struct {
	// Name is the attribute name used in criteria and values.
	Name string

	// Store is the column the field persists to. Defaults to Name.
	Store string

	// Kind is the value kind.
	Kind Kind

	// None marks the field nullable.
	None bool

	// Primary marks the field as the primary key.
	Primary bool

	// ReadOnly fields are never written by create or update.
	ReadOnly bool

	// Inject names a path on a related model that satisfies this field.
	// Injected fields have no column and are never written.
	Inject string

	// Definition, when set, is used verbatim as the column DDL.
	Definition string

	// Extract names another field and a path within its JSON value,
	// "__"-separated. The field is rendered as a generated column over
	// that path.
	Extract string

	// Default is the literal default value. DefaultFunc takes precedence
	// and is never rendered into DDL.
	Default any

	// DefaultFunc computes the default value per record.
	DefaultFunc func() any

	// Replace re-applies the default on update when the field is unchanged.
	Replace bool

	// Format is a rendering hint carried into labels.
	Format string

	// Label lists paths within a Dict value used for matching and labeling.
	Label []string

	// Length is an advisory maximum for Str fields. SQLite ignores it.
	Length int

	noneSet bool
}

// FieldOption adjusts a field under construction.
type FieldOption func(*Field)

// Store overrides the storage column name.
func Store(store string) FieldOption {
	return func(f *Field) { f.Store = store }
}

// Nullable marks the field nullable.
func Nullable() FieldOption {
	return func(f *Field) {
		f.None = true
		f.noneSet = true
	}
}

// NotNull marks the field required.
func NotNull() FieldOption {
	return func(f *Field) {
		f.None = false
		f.noneSet = true
	}
}

// Primary marks the field as the primary key.
func Primary() FieldOption {
	return func(f *Field) { f.Primary = true }
}

// ReadOnly excludes the field from writes.
func ReadOnly() FieldOption {
	return func(f *Field) { f.ReadOnly = true }
}

// Inject marks the field as satisfied by the named path on a related model.
func Inject(path string) FieldOption {
	return func(f *Field) { f.Inject = path }
}

// Definition overrides the column DDL verbatim.
func Definition(definition string) FieldOption {
	return func(f *Field) { f.Definition = definition }
}

// Extract renders the field as a generated column over a path within
// another field's JSON value, e.g. "things__for__0".
func Extract(path string) FieldOption {
	return func(f *Field) { f.Extract = path }
}

// Default sets the literal default value.
func Default(value any) FieldOption {
	return func(f *Field) { f.Default = value }
}

// DefaultFunc sets a computed default value.
func DefaultFunc(fn func() any) FieldOption {
	return func(f *Field) { f.DefaultFunc = fn }
}

// Replace re-applies the default on update when the field is unchanged.
func Replace() FieldOption {
	return func(f *Field) { f.Replace = true }
}

// Format sets the label rendering hint.
func Format(format string) FieldOption {
	return func(f *Field) { f.Format = format }
}

// FieldLabel sets the paths within a Dict value used for matching and
// labeling.
func FieldLabel(paths ...string) FieldOption {
	return func(f *Field) { f.Label = paths }
}

// Length sets the advisory maximum length for a Str field.
func Length(length int) FieldOption {
	return func(f *Field) { f.Length = length }
}

// NewField builds a field of the given kind. A bare scalar field is
// nullable; carrying a default, or being a List or Dict kind, makes it
// required unless nullability was set explicitly.
func NewField(name string, kind Kind, opts ...FieldOption) Field {
	field := Field{
		Name: name,
		Kind: kind,
	}

	for _, opt := range opts {
		opt(&field)
	}

	if field.Store == "" {
		field.Store = field.Name
	}

	if !field.noneSet {
		field.None = field.Default == nil && field.DefaultFunc == nil && kind.Scalar()
	}

	if !kind.Scalar() && field.Default == nil && field.DefaultFunc == nil {
		field.DefaultFunc = emptyDefault(kind)
	}

	return field
}

// IDField declares an auto-assigned integer primary key. It stays nullable
// until the source assigns it and is never written directly.
func IDField(name string) Field {
	return NewField(name, KindInt, Nullable(), Primary(), ReadOnly())
}

// BoolField declares a required bool field.
func BoolField(name string, opts ...FieldOption) Field {
	return declaredField(name, KindBool, opts)
}

// IntField declares a required integer field.
func IntField(name string, opts ...FieldOption) Field {
	return declaredField(name, KindInt, opts)
}

// FloatField declares a required float field.
func FloatField(name string, opts ...FieldOption) Field {
	return declaredField(name, KindFloat, opts)
}

// StrField declares a required string field.
func StrField(name string, opts ...FieldOption) Field {
	return declaredField(name, KindStr, opts)
}

// ListField declares a list field stored as JSON, defaulting to empty.
func ListField(name string, opts ...FieldOption) Field {
	return declaredField(name, KindList, opts)
}

// DictField declares a dict field stored as JSON, defaulting to empty.
func DictField(name string, opts ...FieldOption) Field {
	return declaredField(name, KindDict, opts)
}

// declaredField applies the declaration rule: schema-declared fields are
// required unless explicitly made nullable.
func declaredField(name string, kind Kind, opts []FieldOption) Field {
	return NewField(name, kind, append([]FieldOption{NotNull()}, opts...)...)
}

// DefaultValue returns the field's default: DefaultFunc() when set, else
// the Default literal, else nil.
func (f *Field) DefaultValue() any {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}

	return f.Default
}

func emptyDefault(kind Kind) func() any {
	if kind == KindList {
		return func() any { return []any{} }
	}

	return func() any { return map[string]any{} }
}
