package pygen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// buildDesignClassMain renders main.py for a DESIGN_CLASS submission.
// Python has no overload resolution to emulate, so operations are
// dispatched with getattr directly; $PREV substitution and the
// null-constructor-result convention still apply.
func buildDesignClassMain(req *model.SubmissionRequest, testCases []model.TestCaseInput) (string, error) {
	className := req.Metadata.ClassName
	if className == "" {
		className = "Solution"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "import json\nimport time\n\n")
	fmt.Fprintf(&b, "from solution import %s\n\n", className)

	fmt.Fprintf(&b, "CASE_OPS = [\n")
	for i, tc := range testCases {
		names := []string{}
		args := [][]interface{}{}
		if tc.Ops != nil {
			names = tc.Ops.Names
			args = tc.Ops.Args
		}
		namesJSON, err := json.Marshal(names)
		if err != nil {
			return "", fmt.Errorf("pygen: marshal op names for case %d: %w", i, err)
		}
		argsJSON, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("pygen: marshal op args for case %d: %w", i, err)
		}
		fmt.Fprintf(&b, "    (%s, %s),\n", pythonStringLiteral(string(namesJSON)), pythonStringLiteral(string(argsJSON)))
	}
	fmt.Fprintf(&b, "]\n\n")

	fmt.Fprintf(&b, "def run_case(op_names, op_args):\n")
	fmt.Fprintf(&b, "    instance = None\n")
	fmt.Fprintf(&b, "    previous = None\n")
	fmt.Fprintf(&b, "    results = []\n")
	fmt.Fprintf(&b, "    for i, name in enumerate(op_names):\n")
	fmt.Fprintf(&b, "        raw_args = op_args[i]\n")
	fmt.Fprintf(&b, "        args = [previous if a == \"$PREV\" else a for a in raw_args]\n")
	fmt.Fprintf(&b, "        if i == 0:\n")
	fmt.Fprintf(&b, "            instance = %s(*args)\n", className)
	fmt.Fprintf(&b, "            results.append(None)\n")
	fmt.Fprintf(&b, "            previous = None\n")
	fmt.Fprintf(&b, "            continue\n")
	fmt.Fprintf(&b, "        ret = getattr(instance, name)(*args)\n")
	fmt.Fprintf(&b, "        results.append(ret)\n")
	fmt.Fprintf(&b, "        previous = ret\n")
	fmt.Fprintf(&b, "    return results\n\n")

	fmt.Fprintf(&b, "for case_index, (names_raw, args_raw) in enumerate(CASE_OPS):\n")
	fmt.Fprintf(&b, "    duration_ms = 0\n")
	fmt.Fprintf(&b, "    output = None\n")
	fmt.Fprintf(&b, "    error_info = \"\"\n")
	fmt.Fprintf(&b, "    try:\n")
	fmt.Fprintf(&b, "        op_names = json.loads(names_raw)\n")
	fmt.Fprintf(&b, "        op_args = json.loads(args_raw)\n")
	fmt.Fprintf(&b, "        start = time.perf_counter()\n")
	fmt.Fprintf(&b, "        results = run_case(op_names, op_args)\n")
	fmt.Fprintf(&b, "        duration_ms = int((time.perf_counter() - start) * 1000)\n")
	fmt.Fprintf(&b, "        output = json.dumps(results, separators=(\",\", \":\"))\n")
	fmt.Fprintf(&b, "    except Exception as e:\n")
	fmt.Fprintf(&b, "        output = \"\"\n")
	fmt.Fprintf(&b, "        error_info = \"{}: {}\".format(type(e).__name__, e)\n")
	fmt.Fprintf(&b, "    print(\"TEST_CASE_RESULT: {},{},{},{}\".format(case_index, output, duration_ms, error_info))\n")

	return b.String(), nil
}
