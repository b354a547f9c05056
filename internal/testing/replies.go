package testing

// Canned model replies for the "email me the weather every morning" request.
const (
	WeatherRequest = "email me the weather every morning"

	WeatherIntent = `{
  "goal": "Receive a daily weather report by email",
  "summary": "Email the weather forecast every morning",
  "trigger_type": "schedule",
  "trigger_details": "every morning at 7am",
  "data_sources": ["weather api"],
  "data_destinations": ["email inbox"],
  "required_tools": ["webhook", "gmail"],
  "key_actions": ["fetch forecast", "send email"],
  "complexity": "simple"
}`

	WeatherPlan = `{
  "workflow_name": "Morning weather email",
  "description": "Fetch the forecast and email it every morning",
  "trigger": {"type": "schedule", "config": {"cron": "0 7 * * *"}},
  "steps": [
    {"step_id": 1, "name": "Fetch forecast", "tool": "webhook", "action": "get", "config": {"url": "https://api.weather.example/today"}, "outputs": ["forecast"], "error_handling": "retry"},
    {"step_id": 2, "name": "Send email", "tool": "gmail", "action": "send_email", "config": {"to": "me@example.com"}, "inputs": ["forecast"], "error_handling": "fail"}
  ],
  "tools_used": ["webhook", "gmail"]
}`

	// ApprovingValidation accepts the plan as-is with one optimization.
	ApprovingValidation = `{"is_valid": true, "issues": [], "optimizations": ["Cache the forecast"]}`

	// RejectingValidation fails the plan with a single error.
	RejectingValidation = `{"is_valid": false, "issues": [{"severity": "error", "step_id": 2, "message": "recipient is missing", "suggestion": "set config.to"}], "optimizations": []}`
)

// WeatherScript scripts a full successful run ending with validation.
func WeatherScript(validation string) *ScriptedBackend {
	return NewScriptedBackend(WeatherIntent, WeatherPlan, validation)
}
