package javagen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// buildDesignClassMain renders Main.java for a DESIGN_CLASS submission:
// one test case is one [opNames, opArgs] sequence, run once through
// DesignClassRunner against a fresh instance of the user's class.
func buildDesignClassMain(req *model.SubmissionRequest, testCases []model.TestCaseInput) (string, error) {
	className := req.Metadata.ClassName
	if className == "" {
		className = "Solution"
	}

	// Each case's [names, args] JSON is embedded as a pair of string
	// literals in caseOps and parsed at run time; each case runs the
	// runner independently against a fresh instance.
	var b strings.Builder
	fmt.Fprintf(&b, "package harness;\n\n")
	fmt.Fprintf(&b, "import org.json.JSONArray;\n\n")
	fmt.Fprintf(&b, "public final class Main {\n")
	fmt.Fprintf(&b, "    public static void main(String[] args) throws Exception {\n")
	fmt.Fprintf(&b, "        Class<?> target = Class.forName(\"harness.%s\");\n", className)
	fmt.Fprintf(&b, "        String[][] caseOps = new String[][]{\n")
	for i, tc := range testCases {
		names, err := json.Marshal(opsNamesOrEmpty(tc))
		if err != nil {
			return "", fmt.Errorf("javagen: marshal op names for case %d: %w", i, err)
		}
		argsJSON, err := json.Marshal(opsArgsOrEmpty(tc))
		if err != nil {
			return "", fmt.Errorf("javagen: marshal op args for case %d: %w", i, err)
		}
		comma := ","
		if i == len(testCases)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "            {%s, %s}%s\n", javaStringLiteral(string(names)), javaStringLiteral(string(argsJSON)), comma)
	}
	fmt.Fprintf(&b, "        };\n\n")
	fmt.Fprintf(&b, "        for (int caseIndex = 0; caseIndex < caseOps.length; caseIndex++) {\n")
	fmt.Fprintf(&b, "            String output = null;\n")
	fmt.Fprintf(&b, "            long durationMs = 0;\n")
	fmt.Fprintf(&b, "            String errorInfo = \"\";\n")
	fmt.Fprintf(&b, "            try {\n")
	fmt.Fprintf(&b, "                JSONArray opNames = new JSONArray(caseOps[caseIndex][0]);\n")
	fmt.Fprintf(&b, "                JSONArray opArgsList = new JSONArray(caseOps[caseIndex][1]);\n")
	fmt.Fprintf(&b, "                long startNanos = System.nanoTime();\n")
	fmt.Fprintf(&b, "                JSONArray results = DesignClassRunner.run(target, opNames, opArgsList);\n")
	fmt.Fprintf(&b, "                durationMs = (System.nanoTime() - startNanos) / 1_000_000;\n")
	fmt.Fprintf(&b, "                output = results.toString();\n")
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

func opsNamesOrEmpty(tc model.TestCaseInput) []string {
	if tc.Ops == nil {
		return []string{}
	}
	return tc.Ops.Names
}

func opsArgsOrEmpty(tc model.TestCaseInput) [][]interface{} {
	if tc.Ops == nil {
		return [][]interface{}{}
	}
	return tc.Ops.Args
}
