package core

// Field wraps an optional tool argument so that "absent" stays distinct from
// the zero value. An unset field is skipped entirely by the update builder;
// a field set to "" or 0 is written as such.
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Unset returns an absent Field. The zero Field is also unset.
func Unset[T any]() Field[T] {
	return Field[T]{}
}

func (f Field[T]) IsSet() bool {
	return f.set
}

// Get returns the value and whether it was set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// Or returns the value if set, otherwise fallback.
func (f Field[T]) Or(fallback T) T {
	if f.set {
		return f.value
	}
	return fallback
}

// ExpenseUpdate is a partial update: only set fields are applied.
type ExpenseUpdate struct {
	Date        Field[string]
	Amount      Field[float64]
	Category    Field[string]
	Subcategory Field[string]
	Note        Field[string]
}

// Empty reports whether no field is set.
func (u ExpenseUpdate) Empty() bool {
	return !u.Date.IsSet() && !u.Amount.IsSet() && !u.Category.IsSet() &&
		!u.Subcategory.IsSet() && !u.Note.IsSet()
}

// Clean trims stray surrounding quotes and whitespace from every set string
// field before it reaches the store.
func (u ExpenseUpdate) Clean() ExpenseUpdate {
	trim := func(f Field[string]) Field[string] {
		if v, ok := f.Get(); ok {
			return Set(TrimQuoted(v))
		}
		return f
	}
	u.Date = trim(u.Date)
	u.Category = trim(u.Category)
	u.Subcategory = trim(u.Subcategory)
	u.Note = trim(u.Note)
	return u
}

// Validate enforces the update contract: at least one field, and the date
// must not be a bare integer.
func (u ExpenseUpdate) Validate() error {
	if u.Empty() {
		return NewError(KindValidation, "No fields provided for update.")
	}
	if date, ok := u.Date.Get(); ok {
		if err := ValidateDate(date); err != nil {
			return err
		}
	}
	return nil
}
