package broker

import (
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/thisisjab/pinotbroker/querier/ast"
)

// ExplainOperator names the single plan node of a literal-only query.
const ExplainOperator = "BROKER_EVALUATE"

var explainSchema = querier.DataSchema{
	ColumnNames:     []string{"Operator", "Operator_Id", "Parent_Id"},
	ColumnDataTypes: []querier.DataType{querier.TypeString, querier.TypeInt, querier.TypeInt},
}

// explainResponse describes the plan of a literal-only query without
// evaluating any of its expressions.
func explainResponse() *querier.BrokerResponse {
	return &querier.BrokerResponse{
		ResultTable: &querier.ResultTable{
			DataSchema: querier.DataSchema{
				ColumnNames:     append([]string(nil), explainSchema.ColumnNames...),
				ColumnDataTypes: append([]querier.DataType(nil), explainSchema.ColumnDataTypes...),
			},
			Rows: [][]any{{ExplainOperator, int32(0), int32(-1)}},
		},
		Exceptions: []querier.QueryException{},
		TotalDocs:  0,
	}
}

// synthesize evaluates the select list left to right into a single row.
func (ev *Evaluator) synthesize(q *ast.Query) (*querier.BrokerResponse, error) {
	names := make([]string, len(q.Select))
	types := make([]querier.DataType, len(q.Select))
	row := make([]any, len(q.Select))

	for i, item := range q.Select {
		name, v, err := ev.EvaluateSelectItem(item)
		if err != nil {
			return nil, err
		}
		names[i] = name
		types[i] = v.Type()
		row[i] = v.Any()
	}

	schema, err := querier.NewDataSchema(names, types)
	if err != nil {
		return nil, invariantViolation(err)
	}

	return &querier.BrokerResponse{
		ResultTable: &querier.ResultTable{
			DataSchema: schema,
			Rows:       [][]any{row},
		},
		Exceptions: []querier.QueryException{},
		TotalDocs:  0,
	}, nil
}
