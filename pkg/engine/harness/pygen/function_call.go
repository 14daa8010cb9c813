package pygen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entropic-labs/execengine/pkg/engine/harness/shape"
	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// buildFunctionCallMain renders main.py for a FUNCTION_CALL submission,
// mirroring javagen's structure: one block per test case that decodes
// the input object, times the call, and prints the TEST_CASE_RESULT line.
func buildFunctionCallMain(req *model.SubmissionRequest, testCases []model.TestCaseInput) (string, error) {
	meta := req.Metadata
	returnType := shape.ParseType(meta.ReturnType)
	params := meta.Parameters

	var b strings.Builder
	fmt.Fprintf(&b, "import json\nimport time\n\n")
	fmt.Fprintf(&b, "from support import build_list_node, convert_list_node_to_json\n")
	fmt.Fprintf(&b, "from support import build_tree_node, convert_tree_node_to_json\n")
	fmt.Fprintf(&b, "from support import build_node, convert_node_to_json\n")
	fmt.Fprintf(&b, "from solution import Solution\n\n")

	fmt.Fprintf(&b, "TEST_INPUTS = [\n")
	for i, tc := range testCases {
		raw, err := json.Marshal(tc.Values)
		if err != nil {
			return "", fmt.Errorf("pygen: marshal test case %d input: %w", i, err)
		}
		fmt.Fprintf(&b, "    %s,\n", pythonStringLiteral(string(raw)))
	}
	fmt.Fprintf(&b, "]\n\n")

	fmt.Fprintf(&b, "solution = Solution()\n")
	fmt.Fprintf(&b, "for case_index, raw in enumerate(TEST_INPUTS):\n")
	fmt.Fprintf(&b, "    duration_ms = 0\n")
	fmt.Fprintf(&b, "    output = None\n")
	fmt.Fprintf(&b, "    error_info = \"\"\n")
	fmt.Fprintf(&b, "    try:\n")
	fmt.Fprintf(&b, "        data = json.loads(raw)\n")

	argNames := make([]string, len(params))
	for i, p := range params {
		ty := shape.ParseType(p.Type)
		fieldExpr := fmt.Sprintf("data.get(%s)", pythonStringLiteral(p.Name))
		fmt.Fprintf(&b, "        arg%d = %s\n", i, decodeExpr(ty, fieldExpr))
		argNames[i] = fmt.Sprintf("arg%d", i)
	}

	fmt.Fprintf(&b, "        start = time.perf_counter()\n")
	if returnType.Kind == shape.KindVoid {
		fmt.Fprintf(&b, "        solution.%s(%s)\n", meta.FunctionName, strings.Join(argNames, ", "))
		fmt.Fprintf(&b, "        duration_ms = int((time.perf_counter() - start) * 1000)\n")
		target := 0
		if meta.MutationTarget != nil {
			target = *meta.MutationTarget
		}
		if target >= 0 && target < len(params) {
			mutatedType := shape.ParseType(params[target].Type)
			fmt.Fprintf(&b, "        result_value = %s\n", encodeExpr(mutatedType, fmt.Sprintf("arg%d", target)))
		} else {
			fmt.Fprintf(&b, "        result_value = None\n")
		}
	} else {
		fmt.Fprintf(&b, "        result = solution.%s(%s)\n", meta.FunctionName, strings.Join(argNames, ", "))
		fmt.Fprintf(&b, "        duration_ms = int((time.perf_counter() - start) * 1000)\n")
		fmt.Fprintf(&b, "        result_value = %s\n", encodeExpr(returnType, "result"))
	}
	fmt.Fprintf(&b, "        output = \"null\" if result_value is None else json.dumps(result_value, separators=(\",\", \":\"))\n")
	fmt.Fprintf(&b, "    except Exception as e:\n")
	fmt.Fprintf(&b, "        output = \"\"\n")
	fmt.Fprintf(&b, "        error_info = \"{}: {}\".format(type(e).__name__, e)\n")
	fmt.Fprintf(&b, "    print(\"TEST_CASE_RESULT: {},{},{},{}\".format(case_index, output, duration_ms, error_info))\n")

	return b.String(), nil
}

func pythonStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
