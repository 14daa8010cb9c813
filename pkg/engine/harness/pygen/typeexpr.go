package pygen

import "github.com/entropic-labs/execengine/pkg/engine/harness/shape"

// decodeExpr returns a Python expression decoding a value of shape t from
// jsonExpr, a Python expression already holding the json.loads'd value
// for that field (or array element). Scalars, arrays, and lists need no
// conversion: Python's json module already produces the right native
// shape for them.
func decodeExpr(t shape.Type, jsonExpr string) string {
	switch t.Kind {
	case shape.KindListNode:
		return "build_list_node(" + jsonExpr + ")"
	case shape.KindTreeNode:
		return "build_tree_node(" + jsonExpr + ")"
	case shape.KindGraphNode:
		return "build_node(" + jsonExpr + ")"
	case shape.KindArray, shape.KindList:
		if t.Elem != nil && t.Elem.IsCustomDataStructure() {
			return "[" + decodeExpr(*t.Elem, "__v") + " for __v in " + jsonExpr + "]"
		}
		return jsonExpr
	default:
		return jsonExpr
	}
}

// encodeExpr returns a Python expression producing the JSON-ready value
// (before json.dumps) for a value of shape t held in valueExpr.
func encodeExpr(t shape.Type, valueExpr string) string {
	switch t.Kind {
	case shape.KindListNode:
		return "convert_list_node_to_json(" + valueExpr + ")"
	case shape.KindTreeNode:
		return "convert_tree_node_to_json(" + valueExpr + ")"
	case shape.KindGraphNode:
		return "convert_node_to_json(" + valueExpr + ")"
	case shape.KindArray, shape.KindList:
		if t.Elem != nil && t.Elem.IsCustomDataStructure() {
			return "[" + encodeExpr(*t.Elem, "__v") + " for __v in " + valueExpr + "]"
		}
		return valueExpr
	default:
		return valueExpr
	}
}
