package eval

import (
	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/value"
)

// Match matches v against p. On success it returns env extended with the
// pattern's variables. Shape mismatches fail; they are never errors.
//
// Constructor sub-patterns are matched left to right, each against the
// environment produced by the previous one, and the first failing
// sub-pattern ends the match.
func Match(v value.Value, p ast.Pattern, env *value.Env) (*value.Env, bool) {
	switch p := p.(type) {
	case *ast.IntPattern:
		i, ok := v.(value.Int)
		return env, ok && int64(i) == p.Value

	case *ast.BoolPattern:
		b, ok := v.(value.Bool)
		return env, ok && bool(b) == p.Value

	case *ast.VarPattern:
		return env.Bind(p.Name, v), true

	case *ast.ConstructorPattern:
		c, ok := v.(*value.Constructed)
		if !ok || !ast.SameConstructor(c.Constructor, p.Constructor) || len(c.Fields) != len(p.Args) {
			return env, false
		}
		extended := env
		for i, sub := range p.Args {
			extended, ok = Match(c.Fields[i], sub, extended)
			if !ok {
				return env, false
			}
		}
		return extended, true

	default:
		return env, false
	}
}
