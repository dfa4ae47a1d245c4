package lessonplan

// ContentMap holds generated text keyed by catalog field name. A field whose
// generation failed carries a bracketed sentinel instead of model output.
type ContentMap map[string]string

const (
	FieldObjectives = "单元教学目标"
	FieldKeyPoints  = "教学重点"
	FieldDifficulty = "教学难点"
	FieldActivities = "教学活动"
	FieldHomework   = "作业布置"
	FieldResources  = "教学资源"
	FieldReflection = "教学反思"
	FieldEvaluation = "教学评价"
)

// DefaultFields is the generation order used for every lesson.
var DefaultFields = []string{
	FieldObjectives,
	FieldKeyPoints,
	FieldDifficulty,
	FieldActivities,
	FieldHomework,
	FieldResources,
	FieldReflection,
	FieldEvaluation,
}
