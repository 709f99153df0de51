package vue

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/yaklabco/sfcheck/pkg/textedit"
)

// instanceRef is the name free identifiers of a render function are read
// from once the with block is gone.
const instanceRef = "_vm."

// renderGlobals are the identifiers compiled templates may use without a
// component member of that name.
//
//nolint:gochecknoglobals // Read-only lookup table.
var renderGlobals = map[string]bool{
	"Infinity": true, "undefined": true, "NaN": true, "isFinite": true, "isNaN": true,
	"parseFloat": true, "parseInt": true, "decodeURI": true, "decodeURIComponent": true,
	"encodeURI": true, "encodeURIComponent": true, "Math": true, "Number": true,
	"Date": true, "Array": true, "Object": true, "Boolean": true, "String": true,
	"RegExp": true, "Map": true, "Set": true, "JSON": true, "Intl": true,
	"BigInt": true, "require": true, "arguments": true,
}

// stripWith turns the render code of compile, with(this){...}, into the
// statements of its with block where every free identifier is read from
// _vm. Code without a with block is qualified as a whole.
func stripWith(render string) (string, error) {
	prog, err := parser.ParseFile(nil, "render.js", render, 0)
	if err != nil {
		return "", fmt.Errorf("parse render function: %w", err)
	}

	q := &qualifier{}
	q.push()
	q.declareVars(prog.DeclarationList)

	from, to := 0, len(render)
	stmts := prog.Body
	if block := withThisBlock(prog); block != nil {
		from, to = offset(block.LeftBrace)+1, offset(block.RightBrace)
		stmts = block.List
	}

	for _, s := range stmts {
		q.stmt(s)
	}

	if q.edits.Len() == 0 {
		return render[from:to], nil
	}

	edits := q.edits.Edits()
	for i := range edits {
		edits[i].Start -= from
		edits[i].End -= from
	}

	return textedit.Apply(render[from:to], edits)
}

// withThisBlock returns the body of a program consisting of a single
// with(this) statement.
func withThisBlock(prog *ast.Program) *ast.BlockStatement {
	if len(prog.Body) != 1 {
		return nil
	}
	with, ok := prog.Body[0].(*ast.WithStatement)
	if !ok {
		return nil
	}
	if _, ok := with.Object.(*ast.ThisExpression); !ok {
		return nil
	}
	block, _ := with.Body.(*ast.BlockStatement)
	return block
}

func offset(idx file.Idx) int {
	return int(idx) - 1
}

// qualifier collects the insertions that qualify free identifiers.
type qualifier struct {
	scopes []map[string]bool
	edits  textedit.Builder
}

func (q *qualifier) push() {
	q.scopes = append(q.scopes, make(map[string]bool))
}

func (q *qualifier) pop() {
	q.scopes = q.scopes[:len(q.scopes)-1]
}

func (q *qualifier) declare(name string) {
	q.scopes[len(q.scopes)-1][name] = true
}

func (q *qualifier) declareVars(decls []*ast.VariableDeclaration) {
	for _, decl := range decls {
		for _, b := range decl.List {
			q.declareTarget(b.Target)
		}
	}
}

func (q *qualifier) declared(name string) bool {
	for i := len(q.scopes) - 1; i >= 0; i-- {
		if q.scopes[i][name] {
			return true
		}
	}
	return renderGlobals[name]
}

// declareTarget declares every name bound by a binding target.
func (q *qualifier) declareTarget(target ast.Expression) {
	switch t := target.(type) {
	case *ast.Identifier:
		q.declare(t.Name.String())
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			switch p := prop.(type) {
			case *ast.PropertyShort:
				q.declare(p.Name.Name.String())
			case *ast.PropertyKeyed:
				q.declareTarget(p.Value)
			}
		}
		q.declareTarget(t.Rest)
	case *ast.ArrayPattern:
		for _, elem := range t.Elements {
			q.declareTarget(elem)
		}
		q.declareTarget(t.Rest)
	case *ast.AssignExpression:
		q.declareTarget(t.Left)
	case *ast.Binding:
		q.declareTarget(t.Target)
	}
}

// pattern visits the expressions inside a binding target: defaults and
// computed keys.
func (q *qualifier) pattern(target ast.Expression) {
	switch t := target.(type) {
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			switch p := prop.(type) {
			case *ast.PropertyShort:
				q.expr(p.Initializer)
			case *ast.PropertyKeyed:
				if p.Computed {
					q.expr(p.Key)
				}
				q.pattern(p.Value)
			}
		}
	case *ast.ArrayPattern:
		for _, elem := range t.Elements {
			q.pattern(elem)
		}
	case *ast.AssignExpression:
		q.pattern(t.Left)
		q.expr(t.Right)
	case *ast.Binding:
		q.pattern(t.Target)
		q.expr(t.Initializer)
	}
}

func (q *qualifier) function(params *ast.ParameterList, decls []*ast.VariableDeclaration, name *ast.Identifier, body ast.Node) {
	q.push()
	defer q.pop()

	if name != nil {
		q.declare(name.Name.String())
	}
	if params != nil {
		for _, b := range params.List {
			q.declareTarget(b.Target)
		}
		q.declareTarget(params.Rest)
		for _, b := range params.List {
			q.pattern(b)
		}
	}
	q.declareVars(decls)

	switch b := body.(type) {
	case *ast.BlockStatement:
		q.stmt(b)
	case *ast.ExpressionBody:
		q.expr(b.Expression)
	}
}

func (q *qualifier) exprs(list []ast.Expression) {
	for _, e := range list {
		q.expr(e)
	}
}

//nolint:cyclop,gocyclo,funlen // One case per expression node.
func (q *qualifier) expr(e ast.Expression) {
	switch e := e.(type) {
	case nil:
	case *ast.Identifier:
		if !q.declared(e.Name.String()) {
			q.edits.Insert(offset(e.Idx), instanceRef)
		}
	case *ast.ArrayLiteral:
		q.exprs(e.Value)
	case *ast.ArrayPattern, *ast.ObjectPattern:
		q.assignTarget(e)
	case *ast.AssignExpression:
		q.assignTarget(e.Left)
		q.expr(e.Right)
	case *ast.BinaryExpression:
		q.expr(e.Left)
		q.expr(e.Right)
	case *ast.BracketExpression:
		q.expr(e.Left)
		q.expr(e.Member)
	case *ast.CallExpression:
		q.expr(e.Callee)
		q.exprs(e.ArgumentList)
	case *ast.NewExpression:
		q.expr(e.Callee)
		q.exprs(e.ArgumentList)
	case *ast.ConditionalExpression:
		q.expr(e.Test)
		q.expr(e.Consequent)
		q.expr(e.Alternate)
	case *ast.DotExpression:
		q.expr(e.Left)
	case *ast.PrivateDotExpression:
		q.expr(e.Left)
	case *ast.OptionalChain:
		q.expr(e.Expression)
	case *ast.Optional:
		q.expr(e.Expression)
	case *ast.FunctionLiteral:
		q.function(e.ParameterList, e.DeclarationList, e.Name, e.Body)
	case *ast.ArrowFunctionLiteral:
		q.function(e.ParameterList, e.DeclarationList, nil, e.Body)
	case *ast.ObjectLiteral:
		for _, prop := range e.Value {
			q.property(prop)
		}
	case *ast.SequenceExpression:
		q.exprs(e.Sequence)
	case *ast.TemplateLiteral:
		q.expr(e.Tag)
		q.exprs(e.Expressions)
	case *ast.UnaryExpression:
		q.expr(e.Operand)
	case *ast.SpreadElement:
		q.expr(e.Expression)
	case *ast.YieldExpression:
		q.expr(e.Argument)
	case *ast.AwaitExpression:
		q.expr(e.Argument)
	case *ast.ClassLiteral:
		q.expr(e.SuperClass)
	}
}

func (q *qualifier) property(prop ast.Property) {
	switch p := prop.(type) {
	case *ast.PropertyShort:
		name := p.Name.Name.String()
		if !q.declared(name) {
			q.edits.Insert(offset(p.Name.Idx)+len(name), ": "+instanceRef+name)
		}
	case *ast.PropertyKeyed:
		if p.Computed {
			q.expr(p.Key)
		}
		q.expr(p.Value)
	case *ast.SpreadElement:
		q.expr(p.Expression)
	}
}

// assignTarget qualifies the names a destructuring assignment writes.
func (q *qualifier) assignTarget(target ast.Expression) {
	switch t := target.(type) {
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			switch p := prop.(type) {
			case *ast.PropertyShort:
				q.property(p)
				q.expr(p.Initializer)
			case *ast.PropertyKeyed:
				if p.Computed {
					q.expr(p.Key)
				}
				q.assignTarget(p.Value)
			}
		}
		q.assignTarget(t.Rest)
	case *ast.ArrayPattern:
		for _, elem := range t.Elements {
			q.assignTarget(elem)
		}
		q.assignTarget(t.Rest)
	default:
		q.expr(target)
	}
}

func (q *qualifier) stmts(list []ast.Statement) {
	for _, s := range list {
		q.stmt(s)
	}
}

//nolint:cyclop,gocyclo,funlen // One case per statement node.
func (q *qualifier) stmt(s ast.Statement) {
	switch s := s.(type) {
	case nil:
	case *ast.BlockStatement:
		q.stmts(s.List)
	case *ast.ExpressionStatement:
		q.expr(s.Expression)
	case *ast.ReturnStatement:
		q.expr(s.Argument)
	case *ast.ThrowStatement:
		q.expr(s.Argument)
	case *ast.IfStatement:
		q.expr(s.Test)
		q.stmt(s.Consequent)
		q.stmt(s.Alternate)
	case *ast.VariableStatement:
		q.bindings(s.List)
	case *ast.LexicalDeclaration:
		q.bindings(s.List)
	case *ast.ForStatement:
		q.forInit(s.Initializer)
		q.expr(s.Test)
		q.expr(s.Update)
		q.stmt(s.Body)
	case *ast.ForInStatement:
		q.forInto(s.Into)
		q.expr(s.Source)
		q.stmt(s.Body)
	case *ast.ForOfStatement:
		q.forInto(s.Into)
		q.expr(s.Source)
		q.stmt(s.Body)
	case *ast.WhileStatement:
		q.expr(s.Test)
		q.stmt(s.Body)
	case *ast.DoWhileStatement:
		q.stmt(s.Body)
		q.expr(s.Test)
	case *ast.SwitchStatement:
		q.expr(s.Discriminant)
		for _, c := range s.Body {
			q.expr(c.Test)
			q.stmts(c.Consequent)
		}
	case *ast.TryStatement:
		q.stmt(s.Body)
		if s.Catch != nil {
			q.push()
			q.declareTarget(s.Catch.Parameter)
			q.stmt(s.Catch.Body)
			q.pop()
		}
		if s.Finally != nil {
			q.stmt(s.Finally)
		}
	case *ast.LabelledStatement:
		q.stmt(s.Statement)
	case *ast.WithStatement:
		q.expr(s.Object)
		q.stmt(s.Body)
	case *ast.FunctionDeclaration:
		if s.Function.Name != nil {
			q.declare(s.Function.Name.Name.String())
		}
		q.expr(s.Function)
	}
}

func (q *qualifier) bindings(list []*ast.Binding) {
	for _, b := range list {
		q.declareTarget(b.Target)
		q.pattern(b)
	}
}

func (q *qualifier) forInit(init ast.ForLoopInitializer) {
	switch i := init.(type) {
	case *ast.ForLoopInitializerExpression:
		q.expr(i.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		q.bindings(i.List)
	case *ast.ForLoopInitializerLexicalDecl:
		q.bindings(i.LexicalDeclaration.List)
	}
}

func (q *qualifier) forInto(into ast.ForInto) {
	switch i := into.(type) {
	case *ast.ForIntoVar:
		q.bindings([]*ast.Binding{i.Binding})
	case *ast.ForDeclaration:
		q.declareTarget(i.Target)
		q.pattern(i.Target)
	case *ast.ForIntoExpression:
		q.assignTarget(i.Expression)
	}
}
