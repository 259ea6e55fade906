package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *Program:
		sb.WriteString(prefix + "Program\n")
		for _, imp := range n.Imports {
			printNode(sb, imp, indent+1)
		}
		for _, d := range n.Data {
			printNode(sb, d, indent+1)
		}
		if n.Body != nil {
			sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
			printNode(sb, n.Body, indent+2)
		}

	case *ImportDecl:
		sb.WriteString(fmt.Sprintf("%sImport: %s\n", prefix, n.Path))

	case *DataDecl:
		sb.WriteString(fmt.Sprintf("%sData: %s\n", prefix, n.Name))
		for _, c := range n.Constructors {
			printNode(sb, c, indent+1)
		}

	case *DataConstructor:
		if len(n.Fields) == 0 {
			sb.WriteString(fmt.Sprintf("%s%s (nullary)\n", prefix, n.Name))
		} else {
			sb.WriteString(fmt.Sprintf("%s%s %s\n", prefix, n.Name, FieldSignature(n.Fields)))
		}

	case *Var:
		sb.WriteString(fmt.Sprintf("%sVar: %s\n", prefix, n.Name))

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sInt: %d\n", prefix, n.Value))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBool: %t\n", prefix, n.Value))

	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("%sBinaryExpr: %s\n", prefix, OperatorSymbol(n.Op)))
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *IfExpr:
		sb.WriteString(prefix + "IfExpr\n")
		sb.WriteString(fmt.Sprintf("%s  Cond:\n", prefix))
		printNode(sb, n.Cond, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Then:\n", prefix))
		printNode(sb, n.Then, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Else:\n", prefix))
		printNode(sb, n.Else, indent+2)

	case *FunExpr:
		sb.WriteString(fmt.Sprintf("%sFun: %s\n", prefix, n.Param))
		printNode(sb, n.Body, indent+1)

	case *AppExpr:
		sb.WriteString(prefix + "App\n")
		sb.WriteString(fmt.Sprintf("%s  Func:\n", prefix))
		printNode(sb, n.Func, indent+2)
		if len(n.Args) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Args:\n", prefix))
			for _, arg := range n.Args {
				printNode(sb, arg, indent+2)
			}
		} else {
			sb.WriteString(fmt.Sprintf("%s  Args: none\n", prefix))
		}

	case *LetExpr:
		sb.WriteString(fmt.Sprintf("%sLet: %s\n", prefix, n.Name))
		sb.WriteString(fmt.Sprintf("%s  Bound:\n", prefix))
		printNode(sb, n.Bound, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *AnnotExpr:
		sb.WriteString(fmt.Sprintf("%sAnnot: %s\n", prefix, n.Type))
		printNode(sb, n.Expr, indent+1)

	case *ConstructorRef:
		sb.WriteString(fmt.Sprintf("%sConstructor: %s\n", prefix, n.Constructor.Name))

	case *CaseExpr:
		sb.WriteString(prefix + "CaseExpr\n")
		sb.WriteString(fmt.Sprintf("%s  Scrutinee:\n", prefix))
		printNode(sb, n.Scrutinee, indent+2)
		if len(n.Alts) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Alts:\n", prefix))
			for _, alt := range n.Alts {
				printNode(sb, alt, indent+2)
			}
		}

	case *Alternative:
		sb.WriteString(prefix + "Alt\n")
		sb.WriteString(fmt.Sprintf("%s  Pattern:\n", prefix))
		printNode(sb, n.Pattern, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *IntPattern:
		sb.WriteString(fmt.Sprintf("%sIntPattern: %d\n", prefix, n.Value))

	case *BoolPattern:
		sb.WriteString(fmt.Sprintf("%sBoolPattern: %t\n", prefix, n.Value))

	case *VarPattern:
		sb.WriteString(fmt.Sprintf("%sVarPattern: %s\n", prefix, n.Name))

	case *ConstructorPattern:
		sb.WriteString(fmt.Sprintf("%sConstructorPattern: %s\n", prefix, n.Constructor.Name))
		for _, arg := range n.Args {
			printNode(sb, arg, indent+1)
		}

	default:
		if s, ok := node.(Surfacer); ok {
			printNode(sb, s.Surface(), indent)
			return
		}
		if s, ok := node.(fmt.Stringer); ok {
			sb.WriteString(fmt.Sprintf("%s%s\n", prefix, s))
			return
		}
		sb.WriteString(fmt.Sprintf("%s<unknown node %T>\n", prefix, node))
	}
}
