package javagen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/entropic-labs/execengine/pkg/engine/harness/shape"
	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// buildFunctionCallMain renders Main.java for a FUNCTION_CALL submission:
// one block per test case that decodes the input object, times the
// invocation, and prints the TEST_CASE_RESULT line.
func buildFunctionCallMain(req *model.SubmissionRequest, testCases []model.TestCaseInput) (string, error) {
	meta := req.Metadata
	returnType := shape.ParseType(meta.ReturnType)
	params := meta.Parameters

	var b strings.Builder
	fmt.Fprintf(&b, "package harness;\n\n")
	fmt.Fprintf(&b, "import org.json.JSONArray;\nimport org.json.JSONObject;\n\n")
	fmt.Fprintf(&b, "public final class Main {\n")
	fmt.Fprintf(&b, "    public static void main(String[] args) {\n")
	fmt.Fprintf(&b, "        String[] inputs = new String[]{\n")
	for i, tc := range testCases {
		raw, err := json.Marshal(tc.Values)
		if err != nil {
			return "", fmt.Errorf("javagen: marshal test case %d input: %w", i, err)
		}
		comma := ","
		if i == len(testCases)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "            %s%s\n", javaStringLiteral(string(raw)), comma)
	}
	fmt.Fprintf(&b, "        };\n\n")
	fmt.Fprintf(&b, "        Solution solution = new Solution();\n")
	fmt.Fprintf(&b, "        for (int caseIndex = 0; caseIndex < inputs.length; caseIndex++) {\n")
	fmt.Fprintf(&b, "            String output = null;\n")
	fmt.Fprintf(&b, "            long durationMs = 0;\n")
	fmt.Fprintf(&b, "            String errorInfo = \"\";\n")
	fmt.Fprintf(&b, "            try {\n")
	fmt.Fprintf(&b, "                JSONObject input = new JSONObject(inputs[caseIndex]);\n")

	for i, p := range params {
		ty := shape.ParseType(p.Type)
		fmt.Fprintf(&b, "                %s arg%d = %s;\n", javaType(ty), i, decodeField(ty, "input", p.Name))
	}

	argNames := make([]string, len(params))
	for i := range params {
		argNames[i] = fmt.Sprintf("arg%d", i)
	}

	fmt.Fprintf(&b, "                long startNanos = System.nanoTime();\n")
	if returnType.Kind == shape.KindVoid {
		fmt.Fprintf(&b, "                solution.%s(%s);\n", meta.FunctionName, strings.Join(argNames, ", "))
		fmt.Fprintf(&b, "                durationMs = (System.nanoTime() - startNanos) / 1_000_000;\n")
		target := mutationTargetIndex(meta)
		if target >= 0 && target < len(params) {
			mutatedType := shape.ParseType(params[target].Type)
			fmt.Fprintf(&b, "                output = %s;\n", encodeExpr(mutatedType, fmt.Sprintf("arg%d", target)))
		}
	} else {
		fmt.Fprintf(&b, "                %s result = solution.%s(%s);\n", javaType(returnType), meta.FunctionName, strings.Join(argNames, ", "))
		fmt.Fprintf(&b, "                durationMs = (System.nanoTime() - startNanos) / 1_000_000;\n")
		fmt.Fprintf(&b, "                output = %s;\n", encodeExpr(returnType, "result"))
	}

	fmt.Fprintf(&b, "            } catch (Throwable t) {\n")
	fmt.Fprintf(&b, "                output = \"\";\n")
	fmt.Fprintf(&b, "                String msg = t.getMessage() == null ? t.getClass().getSimpleName() : t.getMessage();\n")
	fmt.Fprintf(&b, "                errorInfo = t.getClass().getSimpleName() + \": \" + msg;\n")
	fmt.Fprintf(&b, "            }\n")
	fmt.Fprintf(&b, "            System.out.println(\"TEST_CASE_RESULT: \" + caseIndex + \",\" + (output == null ? \"null\" : output) + \",\" + durationMs + \",\" + errorInfo);\n")
	fmt.Fprintf(&b, "        }\n")
	fmt.Fprintf(&b, "    }\n")
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// mutationTargetIndex returns meta.MutationTarget, defaulting to 0 when
// unset.
func mutationTargetIndex(meta model.QuestionMetadata) int {
	if meta.MutationTarget == nil {
		return 0
	}
	return *meta.MutationTarget
}

func javaStringLiteral(s string) string {
	return strconv.Quote(s)
}
