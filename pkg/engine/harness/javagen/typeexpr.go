package javagen

import (
	"fmt"

	"github.com/entropic-labs/execengine/pkg/engine/harness/shape"
)

// javaType returns the Java type syntax for t, used in local variable
// declarations and method signatures.
func javaType(t shape.Type) string {
	switch t.Kind {
	case shape.KindInt:
		return "int"
	case shape.KindLong:
		return "long"
	case shape.KindDouble:
		return "double"
	case shape.KindFloat:
		return "float"
	case shape.KindBoolean:
		return "boolean"
	case shape.KindChar:
		return "char"
	case shape.KindString:
		return "String"
	case shape.KindVoid:
		return "void"
	case shape.KindListNode:
		return "ListNode"
	case shape.KindTreeNode:
		return "TreeNode"
	case shape.KindGraphNode:
		return "Node"
	case shape.KindArray:
		return javaType(*t.Elem) + "[]"
	case shape.KindList:
		return "List<" + javaBoxedType(*t.Elem) + ">"
	default:
		return "Object"
	}
}

func javaBoxedType(t shape.Type) string {
	switch t.Kind {
	case shape.KindInt:
		return "Integer"
	case shape.KindLong:
		return "Long"
	case shape.KindDouble:
		return "Double"
	case shape.KindFloat:
		return "Float"
	case shape.KindBoolean:
		return "Boolean"
	case shape.KindChar:
		return "Character"
	case shape.KindString:
		return "String"
	case shape.KindList:
		return "List<" + javaBoxedType(*t.Elem) + ">"
	default:
		return javaType(t)
	}
}

// decodeExpr returns a Java expression of type t, built from the accessor
// closures passed in (each returns a typed org.json read of the same
// value, e.g. a JSONObject field access for a named parameter).
func decodeExpr(t shape.Type, getInt, getLong, getDouble, getBool, getString, getArray func() string) string {
	switch t.Kind {
	case shape.KindInt:
		return getInt()
	case shape.KindLong:
		return getLong()
	case shape.KindDouble:
		return getDouble()
	case shape.KindFloat:
		return "(float) " + getDouble()
	case shape.KindBoolean:
		return getBool()
	case shape.KindChar:
		return getString() + ".charAt(0)"
	case shape.KindString:
		return getString()
	case shape.KindListNode:
		return "Support.buildListNode(" + getArray() + ")"
	case shape.KindTreeNode:
		return "Support.buildTreeNode(" + getArray() + ")"
	case shape.KindGraphNode:
		return "Support.buildNode(" + getArray() + ")"
	default:
		return decodeContainerExpr(t, getArray())
	}
}

// decodeContainerExpr dispatches arrays and lists (including of custom
// data structures) to the fixed Support decoder matching the coercion
// table.
func decodeContainerExpr(t shape.Type, arrayExpr string) string {
	method, ok := decodeMethodFor(t)
	if !ok {
		return arrayExpr // opaque pass-through for unrecognized shapes
	}
	return "Support." + method + "(" + arrayExpr + ")"
}

// decodeMethodFor returns the Support decoder method name for container
// type t, covering every compound row of the coercion table.
func decodeMethodFor(t shape.Type) (string, bool) {
	switch t.Kind {
	case shape.KindArray:
		switch t.Elem.Kind {
		case shape.KindInt:
			return "decodeIntArray", true
		case shape.KindLong:
			return "decodeLongArray", true
		case shape.KindDouble:
			return "decodeDoubleArray", true
		case shape.KindString:
			return "decodeStringArray", true
		case shape.KindListNode:
			return "decodeListNodeArray", true
		case shape.KindTreeNode:
			return "decodeTreeNodeArray", true
		case shape.KindArray:
			if t.Elem.Elem.Kind == shape.KindInt {
				return "decodeIntArrayArray", true
			}
			if t.Elem.Elem.Kind == shape.KindChar {
				return "decodeCharArrayArray", true
			}
		}
	case shape.KindList:
		switch t.Elem.Kind {
		case shape.KindInt:
			return "decodeIntegerList", true
		case shape.KindString:
			return "decodeStringList", true
		case shape.KindListNode:
			return "decodeListNodeList", true
		case shape.KindTreeNode:
			return "decodeTreeNodeList", true
		case shape.KindList:
			if t.Elem.Elem.Kind == shape.KindInt {
				return "decodeIntegerListList", true
			}
			if t.Elem.Elem.Kind == shape.KindString {
				return "decodeStringListList", true
			}
		}
	}
	return "", false
}

// encodeExpr returns a Java expression of type String: valueExpr (of
// type t) serialized into the wire output format.
func encodeExpr(t shape.Type, valueExpr string) string {
	switch t.Kind {
	case shape.KindInt, shape.KindLong, shape.KindDouble, shape.KindFloat, shape.KindBoolean, shape.KindChar:
		return "String.valueOf(" + valueExpr + ")"
	case shape.KindString:
		return "Support.encodeString(" + valueExpr + ")"
	case shape.KindListNode:
		return "Support.encodeListNode(" + valueExpr + ")"
	case shape.KindTreeNode:
		return "Support.encodeTreeNode(" + valueExpr + ")"
	case shape.KindGraphNode:
		return "Support.encodeNode(" + valueExpr + ")"
	default:
		if method, ok := encodeMethodFor(t); ok {
			return "Support." + method + "(" + valueExpr + ")"
		}
		return "String.valueOf(" + valueExpr + ")"
	}
}

func encodeMethodFor(t shape.Type) (string, bool) {
	switch t.Kind {
	case shape.KindArray:
		switch t.Elem.Kind {
		case shape.KindInt:
			return "encodeIntArray", true
		case shape.KindLong:
			return "encodeLongArray", true
		case shape.KindDouble:
			return "encodeDoubleArray", true
		case shape.KindString:
			return "encodeStringArray", true
		case shape.KindListNode:
			return "encodeListNodeArray", true
		case shape.KindTreeNode:
			return "encodeTreeNodeArray", true
		case shape.KindArray:
			if t.Elem.Elem.Kind == shape.KindInt {
				return "encodeIntArrayArray", true
			}
		}
	case shape.KindList:
		switch t.Elem.Kind {
		case shape.KindInt:
			return "encodeIntegerList", true
		case shape.KindString:
			return "encodeStringList", true
		case shape.KindList:
			if t.Elem.Elem.Kind == shape.KindInt {
				return "encodeIntegerListList", true
			}
		}
	}
	return "", false
}

// fieldAccessors builds the six accessor closures decodeExpr needs, rooted
// at a JSONObject field access by name.
func fieldAccessors(objExpr, fieldName string) (getInt, getLong, getDouble, getBool, getString, getArray func() string) {
	return func() string { return fmt.Sprintf("%s.getInt(%q)", objExpr, fieldName) },
		func() string { return fmt.Sprintf("%s.getLong(%q)", objExpr, fieldName) },
		func() string { return fmt.Sprintf("%s.getDouble(%q)", objExpr, fieldName) },
		func() string { return fmt.Sprintf("%s.getBoolean(%q)", objExpr, fieldName) },
		func() string { return fmt.Sprintf("%s.getString(%q)", objExpr, fieldName) },
		func() string { return fmt.Sprintf("%s.getJSONArray(%q)", objExpr, fieldName) }
}

// decodeField returns a Java expression decoding field fieldName (of
// type t) from JSONObject objExpr.
func decodeField(t shape.Type, objExpr, fieldName string) string {
	getInt, getLong, getDouble, getBool, getString, getArray := fieldAccessors(objExpr, fieldName)
	return decodeExpr(t, getInt, getLong, getDouble, getBool, getString, getArray)
}
