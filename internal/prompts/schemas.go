package prompts

// TestCaseSchema is the JSON shape test case prompts ask the backend for.
// Consumers read these key names, so the text must not drift.
const TestCaseSchema = `Return JSON with this exact shape:
{
  "test_cases": [
    {
      "id": "string",
      "title": "string",
      "priority": "P0|P1|P2",
      "type": "Functional|Regression|Negative|Boundary|Security|API|Performance|Usability",
      "preconditions": "string",
      "steps": [
        "Given ...",
        "When ...",
        "Then ..."
      ],
      "expected_result": "string",
      "tags": ["string"],
      "automation_candidate": "Yes|No|Needs Analysis"
    }
  ]
}
`

// TestPlanSchema is the JSON shape test plan prompts ask the backend for.
const TestPlanSchema = `Return JSON with this exact shape:
{
  "feature":"string",
  "objectives":["string"],
  "scope":{"in_scope":["string"], "out_of_scope":["string"]},
  "approach":"string",
  "test_types":["Functional","Regression","API","Security","Performance","Usability"],
  "environments":["string"],
  "data_and_tools":{"test_data":["string"], "tools":["string"]},
  "roles_and_responsibilities":["string"],
  "risks_and_mitigations":[{"risk":"string","mitigation":"string"}],
  "entry_criteria":["string"],
  "exit_criteria":["string"]
}
`
