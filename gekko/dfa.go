package gekko

// Sufficiently complex tokens are matched by explicit DFAs instead of
// regexps, so a match failure can say what was missing.

type transitionFunc func(c byte) bool

type dfaEdge struct {
	match transitionFunc
	next  int
}

// A dfaNode with an empty failReason is an accepting state.
type dfaNode struct {
	edges      []dfaEdge
	failReason string
}

func isPlusOrMinus(c byte) bool { return c == '+' || c == '-' }
func isE(c byte) bool           { return c == 'e' }
func isDot(c byte) bool         { return c == '.' }

// Normal string characters
func isStrNormal(c byte) bool { return c != '\n' && c != '"' && c != '\\' }

// Invalid characters in string
func isStrInvalid(c byte) bool { return c == '\n' }

func isStrNormalNotOctal(c byte) bool { return isStrNormal(c) && !isOctal(c) }
func isStrNormalNotHex(c byte) bool   { return isStrNormal(c) && !isHex(c) }
func isEscape(c byte) bool            { return c == '\\' }

// All single-character escapes
func isSimpleEscape(c byte) bool { return !isOctal(c) && c != 'x' && c != '\n' }
func isHexStart(c byte) bool     { return c == 'x' }
func isQuote(c byte) bool        { return c == '"' }

// Floats acceptable to strconv.ParseFloat
// regex: [+-]?(\d+(\.\d+)?|\.\d+)(e[+-]?\d+)?
var floatDfa = []dfaNode{
	0: {[]dfaEdge{{isPlusOrMinus, 1}, {isDigit, 2}, {isDot, 5}}, f("Invalid float: No numeric value")},

	1: {[]dfaEdge{{isDigit, 2}, {isDot, 5}}, f("Invalid float: No numeric value")},

	2: {[]dfaEdge{{isDigit, 2}, {isDot, 3}, {isE, 7}}, ""},
	3: {[]dfaEdge{{isDigit, 4}}, f("Invalid float: No numeric value after decimal point")},
	4: {[]dfaEdge{{isDigit, 4}, {isE, 7}}, ""},

	5: {[]dfaEdge{{isDigit, 6}}, f("Invalid float: No numeric value after decimal point")},
	6: {[]dfaEdge{{isDigit, 6}, {isE, 7}}, ""},

	7: {[]dfaEdge{{isDigit, 9}, {isPlusOrMinus, 8}}, f("Invalid float: No numeric value following exponent signifier")},
	8: {[]dfaEdge{{isDigit, 9}}, f("Invalid float: No numeric value following exponent signifier")},
	9: {[]dfaEdge{{isDigit, 9}}, ""},
}

// C-style strings
// regex: "([^\\\n]|\\([0-7]{1,3}|x[0-9a-fA-F]+|[^x0-7\n]))*"
var stringDfa = []dfaNode{
	// Base character check
	0: {[]dfaEdge{{isStrNormal, 0}, {isStrInvalid, 1}, {isQuote, 2}, {isEscape, 3}},
		f("Invalid string: No terminating \"")},

	// Unescaped newline
	1: {nil, f("Invalid string: No terminating \"")},
	// String end
	2: {nil, ""},

	// Escape character breakout
	3: {[]dfaEdge{{isSimpleEscape, 0}, {isStrInvalid, 1}, {isOctal, 4}, {isHexStart, 6}},
		f("Invalid string: No terminating \"")},

	// Octal characters, at most 3
	4: {[]dfaEdge{{isStrNormalNotOctal, 0}, {isStrInvalid, 1}, {isQuote, 2}, {isEscape, 3}, {isOctal, 5}},
		f("Invalid string: No terminating \"")},
	5: {[]dfaEdge{{isStrNormal, 0}, {isStrInvalid, 1}, {isQuote, 2}, {isEscape, 3}},
		f("Invalid string: No terminating \"")},

	// Hex characters, 1 or more
	6: {[]dfaEdge{{isHex, 7}}, f("Invalid string: bad hex escape")},
	7: {[]dfaEdge{{isStrNormalNotHex, 0}, {isStrInvalid, 1}, {isQuote, 2}, {isEscape, 3}, {isHex, 7}},
		f("Invalid string: No terminating \"")},
}
