package enrich

import "fmt"

const appraiserPrompt = `You are an expert jewelry appraiser and marketer. Based on these images, provide the following details in JSON format:

1. A concise title (maximum 60 characters) highlighting key features
2. A marketing-friendly description of the piece in plaintext
3. A value estimate considering materials, craftsmanship, condition, design complexity, and market trends
4. Discovered metadata including:
   - Weight in grams if a scale is visible in any image
   - Any markings or stamps visible on the jewelry (e.g. 14K, 925, maker's marks)

Respond in this exact JSON format:
{
    "title": "<concise title>",
    "description": "<marketing description>",
    "value_estimate": {
        "min_value": <number>,
        "max_value": <number>,
        "currency": "USD"
    },
    "discovered_metadata": {
        "weight_grams": <number or null if not visible>,
        "markings": ["<marking1>", "<marking2>", ...] or [] if none visible
    }
}`

// buildPrompt returns the appraiser prompt, with any already-known metadata
// appended so the model can confirm or extend it.
func buildPrompt(metadata map[string]any) string {
	if len(metadata) == 0 {
		return appraiserPrompt
	}
	return fmt.Sprintf("%s\n\nExisting Metadata:\n%v", appraiserPrompt, metadata)
}
