package mython

// parser builds the statement tree with recursive descent over the layout
// token stream. Classes are resolved at parse time, so the registry
// persists across inputs when the same parser table is reused (REPL).
type parser struct {
	lex     *Lexer
	classes map[string]*Class
}

func newParser(lex *Lexer, classes map[string]*Class) *parser {
	return &parser{lex: lex, classes: classes}
}

func (p *parser) cur() Token {
	return p.lex.CurrentToken()
}

func (p *parser) advance() error {
	_, err := p.lex.NextToken()
	return err
}

func (p *parser) isChar(ch byte) bool {
	tok := p.cur()
	return tok.Type == tokenChar && tok.Ch() == ch
}

func (p *parser) errorf(msg string) error {
	return &parseError{pos: p.cur().Pos, msg: msg}
}

func (p *parser) consumeChar(ch byte) error {
	if !p.isChar(ch) {
		return p.errorf("expected '" + string(ch) + "', got " + p.cur().String())
	}
	return p.advance()
}

func (p *parser) consumeType(tt TokenType) (Token, error) {
	tok := p.cur()
	if tok.Type != tt {
		return Token{}, p.errorf("expected " + string(tt) + ", got " + tok.String())
	}
	return tok, p.advance()
}

func (p *parser) parseProgram() (*Compound, error) {
	program := NewCompound()
	for p.cur().Type != tokenEOF {
		if p.cur().Type == tokenNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Append(stmt)
	}
	return program, nil
}

func (p *parser) parseStatement() (Statement, error) {
	switch p.cur().Type {
	case tokenClass:
		return p.parseClassDefinition()
	case tokenIf:
		return p.parseIfElse()
	case tokenPrint:
		return p.parsePrint()
	case tokenReturn:
		return p.parseReturn()
	case tokenID:
		return p.parseSimpleStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseClassDefinition parses a class header and its def-only suite. The
// class object itself is built here, so instantiations later in the source
// can bind to it directly.
func (p *parser) parseClassDefinition() (Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.consumeType(tokenID)
	if err != nil {
		return nil, err
	}

	var parent *Class
	if p.isChar('(') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		parentTok, err := p.consumeType(tokenID)
		if err != nil {
			return nil, err
		}
		parent = p.classes[parentTok.Literal]
		if parent == nil {
			return nil, p.errorf("undeclared base class: " + parentTok.Literal)
		}
		if err := p.consumeChar(')'); err != nil {
			return nil, err
		}
	}

	if err := p.consumeChar(':'); err != nil {
		return nil, err
	}
	if _, err := p.consumeType(tokenNewline); err != nil {
		return nil, err
	}
	if _, err := p.consumeType(tokenIndent); err != nil {
		return nil, err
	}

	var methods []*Method
	for p.cur().Type != tokenDedent && p.cur().Type != tokenEOF {
		if p.cur().Type == tokenNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		m, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if _, err := p.consumeType(tokenDedent); err != nil {
		return nil, err
	}

	cls := NewClass(nameTok.Literal, methods, parent)
	p.classes[cls.Name()] = cls
	return NewClassDefinition(Own(cls)), nil
}

func (p *parser) parseMethod() (*Method, error) {
	if _, err := p.consumeType(tokenDef); err != nil {
		return nil, err
	}
	nameTok, err := p.consumeType(tokenID)
	if err != nil {
		return nil, err
	}
	if err := p.consumeChar('('); err != nil {
		return nil, err
	}

	var params []string
	for !p.isChar(')') {
		if len(params) > 0 {
			if err := p.consumeChar(','); err != nil {
				return nil, err
			}
		}
		paramTok, err := p.consumeType(tokenID)
		if err != nil {
			return nil, err
		}
		params = append(params, paramTok.Literal)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	// The declared self receiver is bound by the call machinery, not
	// passed as an argument, so it does not count toward arity.
	if len(params) > 0 && params[0] == selfName {
		params = params[1:]
	}

	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &Method{Name: nameTok.Literal, FormalParams: params, Body: NewMethodBody(body)}, nil
}

// parseSuite parses ':' followed by either an indented block or a single
// statement on the same line.
func (p *parser) parseSuite() (Statement, error) {
	if err := p.consumeChar(':'); err != nil {
		return nil, err
	}
	if p.cur().Type != tokenNewline {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return NewCompound(stmt), nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.consumeType(tokenIndent); err != nil {
		return nil, err
	}
	block := NewCompound()
	for p.cur().Type != tokenDedent && p.cur().Type != tokenEOF {
		if p.cur().Type == tokenNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Append(stmt)
	}
	if _, err := p.consumeType(tokenDedent); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseIfElse() (Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	condition, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	ifBody, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	var elseBody Statement
	if p.cur().Type == tokenElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBody, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return NewIfElse(condition, ifBody, elseBody), nil
}

func (p *parser) parsePrint() (Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []Statement
	for p.cur().Type != tokenNewline && p.cur().Type != tokenEOF {
		if len(args) > 0 {
			if err := p.consumeChar(','); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return NewPrint(args...), nil
}

func (p *parser) parseReturn() (Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return NewReturn(value), nil
}

// parseSimpleStatement handles lines that begin with an identifier: plain
// and field assignments, and expression statements such as method calls.
func (p *parser) parseSimpleStatement() (Statement, error) {
	ids, err := p.parseDottedIDs()
	if err != nil {
		return nil, err
	}

	if p.isChar('=') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.endOfLine(); err != nil {
			return nil, err
		}
		if len(ids) == 1 {
			return NewAssignment(ids[0], value), nil
		}
		target := NewVariableValue(ids[:len(ids)-1]...)
		return NewFieldAssignment(target, ids[len(ids)-1], value), nil
	}

	primary, err := p.finishDottedPrimary(ids)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExprWith(primary)
	if err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) parseExpressionStatement() (Statement, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return expr, nil
}

// endOfLine consumes the statement terminator. Eof is accepted so the last
// line of a REPL fragment needs no trailing newline.
func (p *parser) endOfLine() error {
	if p.cur().Type == tokenEOF {
		return nil
	}
	_, err := p.consumeType(tokenNewline)
	return err
}

// Expression precedence, loosest first:
// or < and < not < comparison < additive < multiplicative < unary < primary.

func (p *parser) parseExpr() (Statement, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	return p.parseOrRest(left)
}

func (p *parser) parseOrRest(left Statement) (Statement, error) {
	for p.cur().Type == tokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewOr(left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (Statement, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return p.parseAndRest(left)
}

func (p *parser) parseAndRest(left Statement) (Statement, error) {
	for p.cur().Type == tokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = NewAnd(left, right)
	}
	return left, nil
}

func (p *parser) parseNot() (Statement, error) {
	if p.cur().Type == tokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NewNot(operand), nil
	}
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return p.parseComparisonRest(left)
}

// parseComparisonRest applies at most one comparison operator; chained
// comparisons are not part of the language.
func (p *parser) parseComparisonRest(left Statement) (Statement, error) {
	var cmp Comparator
	switch {
	case p.cur().Type == tokenEq:
		cmp = Equal
	case p.cur().Type == tokenNotEq:
		cmp = NotEqual
	case p.cur().Type == tokenLessOrEq:
		cmp = LessOrEqual
	case p.cur().Type == tokenGreaterOrEq:
		cmp = GreaterOrEqual
	case p.isChar('<'):
		cmp = Less
	case p.isChar('>'):
		cmp = Greater
	default:
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return NewComparison(cmp, left, right), nil
}

func (p *parser) parseAdditive() (Statement, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	return p.parseAdditiveRest(left)
}

func (p *parser) parseAdditiveRest(left Statement) (Statement, error) {
	for p.isChar('+') || p.isChar('-') {
		plus := p.isChar('+')
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		if plus {
			left = NewAdd(left, right)
		} else {
			left = NewSub(left, right)
		}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Statement, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseMultiplicativeRest(left)
}

func (p *parser) parseMultiplicativeRest(left Statement) (Statement, error) {
	for p.isChar('*') || p.isChar('/') {
		mult := p.isChar('*')
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if mult {
			left = NewMult(left, right)
		} else {
			left = NewDiv(left, right)
		}
	}
	return left, nil
}

// parseExprWith continues expression parsing above an already-parsed
// primary, used when the statement level has consumed a dotted name before
// discovering the line is not an assignment.
func (p *parser) parseExprWith(primary Statement) (Statement, error) {
	left, err := p.parseMultiplicativeRest(primary)
	if err != nil {
		return nil, err
	}
	left, err = p.parseAdditiveRest(left)
	if err != nil {
		return nil, err
	}
	left, err = p.parseComparisonRest(left)
	if err != nil {
		return nil, err
	}
	left, err = p.parseAndRest(left)
	if err != nil {
		return nil, err
	}
	return p.parseOrRest(left)
}

func (p *parser) parseUnary() (Statement, error) {
	if p.isChar('-') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewSub(NewNumericConst(0), operand), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Statement, error) {
	tok := p.cur()
	switch tok.Type {
	case tokenNumber:
		return NewNumericConst(tok.Number), p.advance()
	case tokenString:
		return NewStringConst(tok.Literal), p.advance()
	case tokenTrue:
		return NewBoolConst(true), p.advance()
	case tokenFalse:
		return NewBoolConst(false), p.advance()
	case tokenNone:
		return NewNoneConst(), p.advance()
	case tokenID:
		ids, err := p.parseDottedIDs()
		if err != nil {
			return nil, err
		}
		return p.finishDottedPrimary(ids)
	}
	if p.isChar('(') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.consumeChar(')'); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf("unexpected token " + tok.String())
}

func (p *parser) parseDottedIDs() ([]string, error) {
	first, err := p.consumeType(tokenID)
	if err != nil {
		return nil, err
	}
	ids := []string{first.Literal}
	for p.isChar('.') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.consumeType(tokenID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, next.Literal)
	}
	return ids, nil
}

// finishDottedPrimary turns a dotted name chain into an expression node:
// str(x), a class instantiation, a method call, or a plain variable chain,
// with trailing .name(...) calls applied to call results.
func (p *parser) finishDottedPrimary(ids []string) (Statement, error) {
	var node Statement
	if p.isChar('(') {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		switch {
		case len(ids) == 1 && ids[0] == "str":
			if len(args) != 1 {
				return nil, p.errorf("str expects a single argument")
			}
			node = NewStringify(args[0])
		case len(ids) == 1:
			cls, ok := p.classes[ids[0]]
			if !ok {
				return nil, p.errorf("undeclared class: " + ids[0])
			}
			node = NewNewInstance(cls, args)
		default:
			receiver := NewVariableValue(ids[:len(ids)-1]...)
			node = NewMethodCall(receiver, ids[len(ids)-1], args)
		}
	} else {
		node = NewVariableValue(ids...)
	}

	for p.isChar('.') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		nameTok, err := p.consumeType(tokenID)
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		node = NewMethodCall(node, nameTok.Literal, args)
	}
	return node, nil
}

func (p *parser) parseArgs() ([]Statement, error) {
	if err := p.consumeChar('('); err != nil {
		return nil, err
	}
	var args []Statement
	for !p.isChar(')') {
		if len(args) > 0 {
			if err := p.consumeChar(','); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, p.advance()
}
