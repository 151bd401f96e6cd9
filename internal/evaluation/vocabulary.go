package evaluation

// vocabulary is the closed food-name set the evaluator scores against.
// Fixed for a run, defined here rather than derived from data, already in
// normalized form. Order is the reporting order.
var vocabulary = []string{
	"apple",
	"banana",
	"orange",
	"strawberry",
	"grapes",
	"rice",
	"pasta",
	"bread",
	"oatmeal",
	"potato",
	"chicken",
	"beef",
	"salmon",
	"egg",
	"beans",
	"cheese",
	"yogurt",
	"milk",
	"tomato",
	"carrot",
	"broccoli",
	"salad",
	"soup",
	"pizza",
	"chocolate",
	"cake",
}

// Vocabulary returns the scoring vocabulary in reporting order.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)

	return out
}
