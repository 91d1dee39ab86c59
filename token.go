// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import "fmt"

// TokenKind is the wire tag of an expression token.
type TokenKind int32

const (
	TokenNull TokenKind = iota
	TokenAnyBinaryOperator
	TokenAnyFunction
	TokenAnyValue
	TokenUndefined
	TokenInteger // also used for colors
	TokenFloat
	TokenStringLiteral
	TokenIdentifier
	TokenVariableName
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenDot
	TokenLeftCurly
	TokenRightCurly
	TokenAt
	TokenAdd
	TokenSubtract
	TokenMultiply
	TokenDivide
	TokenMod
	TokenPower
	TokenSin
	TokenCos
	TokenTan
	TokenSqrt
	TokenFuncInt
	TokenFuncFloat
	TokenFuncStr
	TokenEqual
	TokenLess
	TokenGreater
	TokenNotEqual
	TokenLessEqual
	TokenGreaterEqual
	TokenConditional
	TokenColon
	TokenAnd
	TokenOr
	TokenWhitespace
)

var tokenKindNames = [...]string{
	TokenNull:              "null",
	TokenAnyBinaryOperator: "any_binary_operator",
	TokenAnyFunction:       "any_function",
	TokenAnyValue:          "any_value",
	TokenUndefined:         "undefined",
	TokenInteger:           "integer",
	TokenFloat:             "float",
	TokenStringLiteral:     "string_literal",
	TokenIdentifier:        "identifier",
	TokenVariableName:      "variable_name",
	TokenLeftBracket:       "(",
	TokenRightBracket:      ")",
	TokenComma:             ",",
	TokenDot:               ".",
	TokenLeftCurly:         "{",
	TokenRightCurly:        "}",
	TokenAt:                "@",
	TokenAdd:               "+",
	TokenSubtract:          "-",
	TokenMultiply:          "*",
	TokenDivide:            "/",
	TokenMod:               "%",
	TokenPower:             "^",
	TokenSin:               "sin",
	TokenCos:               "cos",
	TokenTan:               "tan",
	TokenSqrt:              "sqrt",
	TokenFuncInt:           "int",
	TokenFuncFloat:         "float",
	TokenFuncStr:           "str",
	TokenEqual:             "=",
	TokenLess:              "<",
	TokenGreater:           ">",
	TokenNotEqual:          "<>",
	TokenLessEqual:         "<=",
	TokenGreaterEqual:      ">=",
	TokenConditional:       "?",
	TokenColon:             ":",
	TokenAnd:               "&",
	TokenOr:                "|",
	TokenWhitespace:        " ",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int32(k))
}

// Token is one atom of a condition or action parameter expression. It is
// implemented by Integer, Color, Float, StringLiteral, Identifier,
// VariableName and Operator.
type Token interface {
	// Kind returns the tag written on the wire.
	Kind() TokenKind
}

type (
	// Integer is an integer literal.
	Integer int64

	// Color is an integer literal that was authored as a color. It is written
	// with the Integer tag, so decoding always produces Integer instead.
	Color int64

	Float         float64
	StringLiteral string
	Identifier    string
	VariableName  string

	// Operator is any token without a payload. Kinds this package does not
	// name are kept as they are.
	Operator TokenKind
)

func (Integer) Kind() TokenKind       { return TokenInteger }
func (Color) Kind() TokenKind         { return TokenInteger }
func (Float) Kind() TokenKind         { return TokenFloat }
func (StringLiteral) Kind() TokenKind { return TokenStringLiteral }
func (Identifier) Kind() TokenKind    { return TokenIdentifier }
func (VariableName) Kind() TokenKind  { return TokenVariableName }
func (o Operator) Kind() TokenKind    { return TokenKind(o) }

func readToken(r *Reader) Token {
	kind := TokenKind(r.ReadI32())
	if r.err != nil {
		return nil
	}
	switch kind {
	case TokenInteger:
		return Integer(r.ReadI64())
	case TokenFloat:
		return Float(r.ReadF64())
	case TokenStringLiteral:
		return StringLiteral(r.ReadString())
	case TokenIdentifier:
		return Identifier(r.ReadString())
	case TokenVariableName:
		return VariableName(r.ReadString())
	}
	return Operator(kind)
}

// writeToken writes a token's tag and payload. Operators may carry any tag
// except the ones that need a payload, which the decoder would expect.
func writeToken(w *Writer, t Token) error {
	if t == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidValue)
	}
	switch v := t.(type) {
	case Integer:
		w.WriteI32(int32(TokenInteger))
		w.WriteI64(int64(v))
	case Color:
		w.WriteI32(int32(TokenInteger))
		w.WriteI64(int64(v))
	case Float:
		w.WriteI32(int32(TokenFloat))
		w.WriteF64(float64(v))
	case StringLiteral:
		w.WriteI32(int32(TokenStringLiteral))
		w.WriteString(string(v))
	case Identifier:
		w.WriteI32(int32(TokenIdentifier))
		w.WriteString(string(v))
	case VariableName:
		w.WriteI32(int32(TokenVariableName))
		w.WriteString(string(v))
	case Operator:
		if TokenKind(v).hasPayload() {
			return fmt.Errorf("%w: operator token with payload kind %v", ErrInvalidValue, TokenKind(v))
		}
		w.WriteI32(int32(v))
	default:
		return fmt.Errorf("%w: token %T", ErrUnknownTag, t)
	}
	return nil
}

func (k TokenKind) hasPayload() bool {
	switch k {
	case TokenInteger, TokenFloat, TokenStringLiteral, TokenIdentifier, TokenVariableName:
		return true
	}
	return false
}

// readParam reads one parameter: an i32 token count and the tokens.
func readParam(r *Reader) []Token {
	n := r.ReadI32()
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.pos -= 4
		r.fail(ErrCorruptData, "negative token count %d", n)
		return nil
	}
	return readItems(r, "tokens", int64(n), readToken)
}

func writeParam(w *Writer, tokens []Token) error {
	w.WriteI32(int32(len(tokens)))
	for i, t := range tokens {
		if err := writeToken(w, t); err != nil {
			return fmt.Errorf("tokens[%d]: %w", i, err)
		}
	}
	return nil
}

// writeParams writes a u32 parameter count followed by each parameter.
func writeParams(w *Writer, params [][]Token) error {
	w.WriteU32(uint32(len(params)))
	for i, p := range params {
		if err := writeParam(w, p); err != nil {
			return fmt.Errorf("params[%d]: %w", i, err)
		}
	}
	return nil
}
