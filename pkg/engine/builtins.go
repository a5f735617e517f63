package engine

import (
	"fmt"
	"strings"

	"github.com/birukm3/femSIM/pkg/pipeline"
	"github.com/birukm3/femSIM/pkg/triangulate"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites plan source before it reaches zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbol registration.
//  2. kebab-case identifiers become snake_case; zygomys reads a hyphen
//     between identifiers as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch c := b[i]; {
		case c == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' && j+1 < len(b) {
					j++
				}
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j

		case c == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j

		case c == ';':
			out = append(out, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits args into keyword/value pairs and positional arguments.
// A keyword takes the next argument as its value; a trailing keyword gets
// a null value.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
			continue
		}
		res.kw[name] = zygo.SexpNull
	}
	return res
}

// checkArgs rejects positional arguments and keywords a builtin does not
// understand.
func checkArgs(builtin string, pa kwArgs, allowed ...string) error {
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected argument %s", builtin, pa.positional[0].SexpString(nil))
	}
	for name := range pa.kw {
		known := false
		for _, a := range allowed {
			if name == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown option :%s", builtin, name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the plan builtins. Each one edits cfg in place.
// Source must go through preprocessSource first so keywords are recognized.
func registerBuiltins(env *zygo.Zlisp, cfg *pipeline.Config) {

	// (triangulate) or (triangulate :policy :fan)
	env.AddFunction("triangulate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := checkArgs(name, pa, "policy"); err != nil {
			return zygo.SexpNull, err
		}
		cfg.Triangulate = true
		if v, ok := pa.kw["policy"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("triangulate: policy: %w", err)
			}
			p, err := triangulate.ParsePolicy(s)
			if err != nil {
				return zygo.SexpNull, err
			}
			cfg.Policy = p
		}
		return zygo.SexpNull, nil
	})

	// (stitch) or (stitch :epsilon 1e-6)
	env.AddFunction("stitch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := checkArgs(name, pa, "epsilon"); err != nil {
			return zygo.SexpNull, err
		}
		cfg.Stitch = true
		if v, ok := pa.kw["epsilon"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stitch: epsilon: %w", err)
			}
			if f < 0 {
				return zygo.SexpNull, fmt.Errorf("stitch: epsilon must not be negative, got %g", f)
			}
			cfg.Epsilon = f
		}
		return zygo.SexpNull, nil
	})

	// (orient) or (orient :nesting false)
	env.AddFunction("orient", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := checkArgs(name, pa, "nesting"); err != nil {
			return zygo.SexpNull, err
		}
		cfg.Orient = true
		if v, ok := pa.kw["nesting"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("orient: nesting: %w", err)
			}
			cfg.Nesting = b
		}
		return zygo.SexpNull, nil
	})

	// (skip :triangulate :stitch)
	env.AddFunction("skip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("skip: expected at least one stage")
		}
		for _, a := range args {
			stage, err := toKeywordString(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skip: %w", err)
			}
			switch stage {
			case "triangulate":
				cfg.Triangulate = false
			case "stitch":
				cfg.Stitch = false
			case "orient":
				cfg.Orient = false
			default:
				return zygo.SexpNull, fmt.Errorf("skip: unknown stage %q, expected triangulate, stitch or orient", stage)
			}
		}
		return zygo.SexpNull, nil
	})
}
