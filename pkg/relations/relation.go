package relations

import "fmt"

// Relation ties a child schema to a parent through a field on the child.
// Relating a child prepends that field to the child's label, so retrievals
// and label searches reach through to the parent.
type Relation struct {
	Parent      *Schema
	Child       *Schema
	ParentName  string
	ChildName   string
	ParentField string
	ChildField  string
	Mode        string
}

// RelationOption overrides a relation default.
type RelationOption func(*Relation)

// ParentName sets the name the child side filters the parent by. Defaults
// to the parent schema's name.
func ParentName(name string) RelationOption {
	return func(r *Relation) { r.ParentName = name }
}

// ChildName sets the name the parent side reaches the child by. Defaults to
// the child schema's name.
func ChildName(name string) RelationOption {
	return func(r *Relation) { r.ChildName = name }
}

// ParentField sets the parent field the relation joins on. Defaults to the
// parent's id field.
func ParentField(name string) RelationOption {
	return func(r *Relation) { r.ParentField = name }
}

// ChildField sets the child field the relation joins on. Defaults to the
// parent schema's name suffixed "_id". The field must already be declared
// on the child.
func ChildField(name string) RelationOption {
	return func(r *Relation) { r.ChildField = name }
}

// OneToMany relates a parent to any number of child rows.
func OneToMany(parent, child *Schema, opts ...RelationOption) (*Relation, error) {
	return relate(parent, child, ModeMany, opts)
}

// OneToOne relates a parent to at most one child row.
func OneToOne(parent, child *Schema, opts ...RelationOption) (*Relation, error) {
	return relate(parent, child, ModeOne, opts)
}

// MustOneToMany is OneToMany, panicking on error.
func MustOneToMany(parent, child *Schema, opts ...RelationOption) *Relation {
	rel, err := OneToMany(parent, child, opts...)
	if err != nil {
		panic(err)
	}

	return rel
}

// MustOneToOne is OneToOne, panicking on error.
func MustOneToOne(parent, child *Schema, opts ...RelationOption) *Relation {
	rel, err := OneToOne(parent, child, opts...)
	if err != nil {
		panic(err)
	}

	return rel
}

func relate(parent, child *Schema, mode string, opts []RelationOption) (*Relation, error) {
	rel := &Relation{
		Parent:     parent,
		Child:      child,
		ParentName: parent.Name,
		ChildName:  child.Name,
		Mode:       mode,
	}

	for _, opt := range opts {
		opt(rel)
	}

	if rel.ParentField == "" {
		if parent.ID == "" {
			return nil, fmt.Errorf("relation %s-%s: parent has no id field", parent.Name, child.Name)
		}

		rel.ParentField = parent.ID
	}

	if rel.ChildField == "" {
		rel.ChildField = parent.Name + "_id"
	}

	if parent.FieldByName(rel.ParentField) == nil {
		return nil, fmt.Errorf("relation %s-%s: parent has no field %q", parent.Name, child.Name, rel.ParentField)
	}

	if child.FieldByName(rel.ChildField) == nil {
		return nil, fmt.Errorf("relation %s-%s: child has no field %q", parent.Name, child.Name, rel.ChildField)
	}

	if _, ok := parent.children[rel.ChildName]; ok {
		return nil, fmt.Errorf("relation %s-%s: parent already has child %q", parent.Name, child.Name, rel.ChildName)
	}

	if _, ok := child.parents[rel.ParentName]; ok {
		return nil, fmt.Errorf("relation %s-%s: child already has parent %q", parent.Name, child.Name, rel.ParentName)
	}

	parent.children[rel.ChildName] = rel
	parent.childOrder = append(parent.childOrder, rel)

	child.parents[rel.ParentName] = rel
	child.parentOrder = append(child.parentOrder, rel)

	child.relabel(rel.ChildField)

	return rel, nil
}
