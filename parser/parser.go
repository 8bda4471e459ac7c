package parser

import (
	"fmt"

	"github.com/example/golox/ast"
	"github.com/example/golox/token"
)

// Parser is a recursive-descent parser over a scanned token stream. Syntax
// errors are collected in order; after an error the parser synchronizes to
// the next statement boundary and keeps going, so one run reports as many
// independent errors as possible.
type Parser struct {
	tokens  []token.Token
	current int
	errors  []error
}

// parseError is the panic sentinel used to unwind to a statement boundary.
type parseError struct{}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole stream and returns the statement list. A tree
// produced alongside errors is best-effort and not meant for evaluation.
func (p *Parser) Parse() []ast.Stmt {
	var statements []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// ParseExpression parses a single expression spanning the whole stream.
func (p *Parser) ParseExpression() (expr ast.Expr) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			expr = nil
		}
	}()
	expr = p.expression()
	if !p.isAtEnd() {
		p.reportError(p.peek(), "Expect end of expression.")
	}
	return expr
}

func (p *Parser) Errors() []error {
	return p.errors
}

// ---------- Declarations and statements ----------

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.Class):
		return p.classDeclaration()
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) classDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "Expect class name.")

	var superclass *ast.Variable
	hasSuperclass := false
	if p.match(token.Less) {
		p.consume(token.Identifier, "Expect superclass name.")
		superclass = &ast.Variable{Name: p.previous()}
		hasSuperclass = true
	} else {
		// Classes without a '<' clause implicitly extend the global Object
		// class. The flag stays false so the resolver still treats the class
		// as a non-subclass for 'super' diagnostics.
		superclass = &ast.Variable{Name: token.Token{
			Type:   token.Identifier,
			Lexeme: "Object",
			Line:   name.Line,
		}}
	}

	p.consume(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		methods = append(methods, p.function("method"))
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")

	return &ast.Class{
		Name:          name,
		Superclass:    superclass,
		HasSuperclass: hasSuperclass,
		Methods:       methods,
	}
}

func (p *Parser) function(kind string) *ast.Function {
	name := p.consume(token.Identifier, "Expect "+kind+" name.")
	p.consume(token.LeftParen, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= 255 {
				p.reportError(p.peek(), "Can not have more than 255 parameters.")
			}
			params = append(params, p.consume(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")

	p.consume(token.LeftBrace, "Expect '{' before "+kind+" body.")
	body := p.blockStatements()

	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "Expect variable name.")

	var initializer ast.Expr = &ast.Literal{Value: nil}
	if p.match(token.Equal) {
		initializer = p.expression()
	}

	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: initializer}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.LeftBrace):
		return &ast.Block{Statements: p.blockStatements()}
	default:
		return p.expressionStatement()
	}
}

// forStatement desugars to a while loop wrapped in a block, so the later
// stages never see a dedicated for node.
func (p *Parser) forStatement() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		initializer = &ast.Block{}
	case p.match(token.Var):
		initializer = p.varDeclaration()
	default:
		initializer = p.expressionStatement()
	}

	var condition ast.Expr = &ast.Literal{Value: true}
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var increment ast.Expr = &ast.Literal{Value: nil}
	if !p.check(token.RightParen) {
		increment = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	return &ast.Block{Statements: []ast.Stmt{
		initializer,
		&ast.While{
			Condition: condition,
			Body: &ast.Block{Statements: []ast.Stmt{
				body,
				&ast.Expression{Expression: increment},
			}},
		},
	}}
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt = &ast.Block{}
	if p.match(token.Else) {
		elseBranch = p.statement()
	}

	return &ast.If{Condition: condition, Then: thenBranch, Else: elseBranch}
}

func (p *Parser) printStatement() ast.Stmt {
	value := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	return &ast.Print{Expression: value}
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.previous()

	var value ast.Expr = &ast.Literal{Value: nil}
	empty := true
	if !p.check(token.Semicolon) {
		value = p.expression()
		empty = false
	}

	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value, Empty: empty}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")
	body := p.statement()

	return &ast.While{Condition: condition, Body: body}
}

func (p *Parser) blockStatements() []ast.Stmt {
	var statements []ast.Stmt
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return statements
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.Expression{Expression: expr}
}

// ---------- Expressions, lowest precedence first ----------

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()

		switch e := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: e.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: e.Object, Name: e.Name, Value: value}
		}
		p.reportError(equals, "Invalid assignment target.")
	}

	return expr
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.Or) {
		operator := p.previous()
		right := p.and()
		expr = &ast.Logical{Operator: operator, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		operator := p.previous()
		right := p.equality()
		expr = &ast.Logical{Operator: operator, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BangEqual, token.EqualEqual) {
		operator := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Operator: operator, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		operator := p.previous()
		right := p.term()
		expr = &ast.Binary{Operator: operator, Left: expr, Right: right}
	}
	return expr
}

// term covers '+', '-', and the string-concatenation operator '++', all
// left-associative at the same precedence.
func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Minus, token.Plus, token.PlusPlus) {
		operator := p.previous()
		right := p.factor()
		expr = &ast.Binary{Operator: operator, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Slash, token.Star) {
		operator := p.previous()
		right := p.unary()
		expr = &ast.Binary{Operator: operator, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		operator := p.previous()
		right := p.unary()
		return &ast.Unary{Operator: operator, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Identifier, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var arguments []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(arguments) >= 255 {
				p.reportError(p.peek(), "Can not have more than 255 arguments.")
			}
			arguments = append(arguments, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")

	return &ast.Call{Callee: callee, Paren: paren, Arguments: arguments}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}

	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}

	case p.match(token.Super):
		keyword := p.previous()
		p.consume(token.Dot, "Expect '.' after 'super'.")
		method := p.consume(token.Identifier, "Expect superclass method name.")
		return &ast.Super{Keyword: keyword, Method: method}

	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}

	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}

	case p.match(token.LeftParen):
		expr := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expression: expr}
	}

	panic(p.error(p.peek(), "Expect expression."))
}

// ---------- Plumbing ----------

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.error(p.peek(), message))
}

func (p *Parser) reportError(tok token.Token, message string) {
	where := "'" + tok.Lexeme + "'"
	if tok.Type == token.EOF {
		where = "end"
	}
	p.errors = append(p.errors, fmt.Errorf("[line %d] Error at %s: %s", tok.Line, where, message))
}

func (p *Parser) error(tok token.Token, message string) parseError {
	p.reportError(tok, message)
	return parseError{}
}

// synchronize discards tokens until a likely statement boundary: just past a
// ';', or just before a keyword that starts a declaration or statement.
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
