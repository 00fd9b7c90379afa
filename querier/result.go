package querier

import "fmt"

// DataSchema describes the columns of a ResultTable. ColumnNames and
// ColumnDataTypes are parallel slices.
type DataSchema struct {
	ColumnNames     []string   `json:"columnNames"`
	ColumnDataTypes []DataType `json:"columnDataTypes"`
}

func NewDataSchema(names []string, types []DataType) (DataSchema, error) {
	if len(names) != len(types) {
		return DataSchema{}, fmt.Errorf("schema has %d column names but %d types", len(names), len(types))
	}
	return DataSchema{ColumnNames: names, ColumnDataTypes: types}, nil
}

func (s DataSchema) Size() int {
	return len(s.ColumnNames)
}

func (s DataSchema) ColumnName(i int) string {
	return s.ColumnNames[i]
}

func (s DataSchema) ColumnDataType(i int) DataType {
	return s.ColumnDataTypes[i]
}

// ResultTable is a schema plus rows whose cells positionally match it.
type ResultTable struct {
	DataSchema DataSchema `json:"dataSchema"`
	Rows       [][]any    `json:"rows"`
}

// QueryException is reported to clients for failed requests.
type QueryException struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

type BrokerResponse struct {
	RequestID   string           `json:"requestId"`
	ResultTable *ResultTable     `json:"resultTable,omitempty"`
	Exceptions  []QueryException `json:"exceptions"`

	// TotalDocs is the number of documents scanned to produce the result.
	TotalDocs  int64 `json:"totalDocs"`
	TimeUsedMs int64 `json:"timeUsedMs"`
}
