package ir

// Effects describe what a statement does beyond producing its value:
// opaque I/O (any call) or a write to a known location.

// LvalueKind distinguishes storage locations
type LvalueKind int

const (
	LTemp LvalueKind = iota
	LRegister
	LGlobal
)

// Lvalue is where a value is stored. A register lvalue names either the
// register of a merge temp (Name empty) or a captured local (Name set).
type Lvalue struct {
	Kind LvalueKind
	Temp TempID
	Name string
}

func TempLvalue(t TempID) Lvalue      { return Lvalue{Kind: LTemp, Temp: t} }
func PhiLvalue(t TempID) Lvalue       { return Lvalue{Kind: LRegister, Temp: t} }
func NamedLvalue(name string) Lvalue  { return Lvalue{Kind: LRegister, Name: name} }
func GlobalLvalue(name string) Lvalue { return Lvalue{Kind: LGlobal, Name: name} }

// IsTemp reports whether the lvalue defines a temp.
func (l Lvalue) IsTemp() bool { return l.Kind == LTemp }

// IsPhi reports whether the lvalue is a merge register.
func (l Lvalue) IsPhi() bool { return l.Kind == LRegister && l.Name == "" }

// IsNamed reports whether the lvalue is written by source name.
func (l Lvalue) IsNamed() bool {
	return l.Kind == LGlobal || l.Kind == LRegister && l.Name != ""
}

func (l Lvalue) String() string {
	switch l.Kind {
	case LTemp:
		return l.Temp.String()
	case LRegister:
		if l.Name != "" {
			return "%" + l.Name
		}
		return "%" + l.Temp.String()
	default:
		return "@" + l.Name
	}
}

// EffectKind distinguishes effects
type EffectKind int

const (
	Io EffectKind = iota
	Mutation
)

// Effect marks a statement as observable.
type Effect struct {
	Kind   EffectKind
	Target Lvalue
}

func (e Effect) String() string {
	if e.Kind == Io {
		return "io"
	}
	return "mut " + e.Target.String()
}

// IoEffect is the effect of any opaque operation.
var IoEffect = Effect{Kind: Io}

// MutationOf returns a mutation effect on the location an object operand
// denotes.
func MutationOf(object Expr) Effect {
	return Effect{Kind: Mutation, Target: LocationOf(object)}
}

// LocationOf maps an object operand to the lvalue that names it.
func LocationOf(object Expr) Lvalue {
	switch o := object.(type) {
	case TempRef:
		return TempLvalue(o.ID)
	case Local:
		return NamedLvalue(o.Name)
	case Ident:
		return GlobalLvalue(o.Name)
	case This:
		return GlobalLvalue("this")
	case Arguments:
		return GlobalLvalue("arguments")
	default:
		return GlobalLvalue("?")
	}
}

// ExprEffects returns the effects of evaluating e.
func ExprEffects(e Expr) []Effect {
	switch x := e.(type) {
	case *Call, Raw:
		return []Effect{IoEffect}
	case *Delete:
		return []Effect{MutationOf(x.Object)}
	}
	return nil
}

// HasIo reports whether effects contain an opaque effect.
func HasIo(effects []Effect) bool {
	for _, e := range effects {
		if e.Kind == Io {
			return true
		}
	}
	return false
}
