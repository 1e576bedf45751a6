package keyreg

// Per-connector key lists. Each connector contributes the keys it reads and
// writes through the routing facade; the registry is the union of all of
// them. Token-bearing and signing keys go in the sensitive list, everything
// else in the plain list.

var githubSensitiveKeys = []string{
	"GITHUB_TOKEN",
	"GITHUB_CLIENT_SECRET",
	"GITHUB_WEBHOOK_SECRET",
}

var githubPlainKeys = []string{
	"GITHUB_ORG",
	"GITHUB_CLIENT_ID",
	"GITHUB_INSTALLATION_ID",
	"GITHUB_SYNC_ENABLED",
}

var slackSensitiveKeys = []string{
	"SLACK_BOT_TOKEN",
	"SLACK_SIGNING_SECRET",
}

var slackPlainKeys = []string{
	"SLACK_TEAM_ID",
	"SLACK_DEFAULT_CHANNEL",
}

var hubspotSensitiveKeys = []string{
	"HUBSPOT_ACCESS_TOKEN",
	"HUBSPOT_REFRESH_TOKEN",
	"HUBSPOT_CLIENT_SECRET",
}

var hubspotPlainKeys = []string{
	"HUBSPOT_PORTAL_ID",
	"HUBSPOT_CLIENT_ID",
}

var salesforceSensitiveKeys = []string{
	"SALESFORCE_ACCESS_TOKEN",
	"SALESFORCE_REFRESH_TOKEN",
	"SALESFORCE_CLIENT_SECRET",
}

var salesforcePlainKeys = []string{
	"SALESFORCE_INSTANCE_URL",
	"SALESFORCE_CLIENT_ID",
}

var mondaySensitiveKeys = []string{
	"MONDAY_API_TOKEN",
	"MONDAY_SIGNING_SECRET",
}

var mondayPlainKeys = []string{
	"MONDAY_ACCOUNT_ID",
	"MONDAY_BOARD_ID",
}

var pipedriveSensitiveKeys = []string{
	"PIPEDRIVE_API_TOKEN",
}

var pipedrivePlainKeys = []string{
	"PIPEDRIVE_COMPANY_DOMAIN",
}

var teamworkSensitiveKeys = []string{
	"TEAMWORK_API_KEY",
}

var teamworkPlainKeys = []string{
	"TEAMWORK_SITE_NAME",
}

var jiraSensitiveKeys = []string{
	"JIRA_API_TOKEN",
	"JIRA_WEBHOOK_SECRET",
}

var jiraPlainKeys = []string{
	"JIRA_SITE_URL",
	"JIRA_USER_EMAIL",
	"JIRA_PROJECT_KEYS",
}

var confluenceSensitiveKeys = []string{
	"CONFLUENCE_API_TOKEN",
}

var confluencePlainKeys = []string{
	"CONFLUENCE_SITE_URL",
	"CONFLUENCE_SPACE_KEYS",
}

var snowflakeSensitiveKeys = []string{
	"SNOWFLAKE_PASSWORD",
	"SNOWFLAKE_PRIVATE_KEY",
}

var snowflakePlainKeys = []string{
	"SNOWFLAKE_ACCOUNT",
	"SNOWFLAKE_USER",
	"SNOWFLAKE_WAREHOUSE",
	"SNOWFLAKE_DATABASE",
}

var linearSensitiveKeys = []string{
	"LINEAR_API_KEY",
	"LINEAR_WEBHOOK_SECRET",
}

var linearPlainKeys = []string{
	"LINEAR_TEAM_ID",
	"LINEAR_TRIAGE_ENABLED",
}

// Platform-level keys not owned by any single connector.
var platformSensitiveKeys = []string{
	"API_KEY_SECRET",
}

var platformPlainKeys = []string{
	"COMPANY_NAME",
	"BILLING_PLAN",
	"BACKFILL_WINDOW_DAYS",
	"NOTIFICATION_EMAIL",
}

func allSensitiveKeys() []string {
	return concat(
		githubSensitiveKeys,
		slackSensitiveKeys,
		hubspotSensitiveKeys,
		salesforceSensitiveKeys,
		mondaySensitiveKeys,
		pipedriveSensitiveKeys,
		teamworkSensitiveKeys,
		jiraSensitiveKeys,
		confluenceSensitiveKeys,
		snowflakeSensitiveKeys,
		linearSensitiveKeys,
		platformSensitiveKeys,
	)
}

func allPlainKeys() []string {
	return concat(
		githubPlainKeys,
		slackPlainKeys,
		hubspotPlainKeys,
		salesforcePlainKeys,
		mondayPlainKeys,
		pipedrivePlainKeys,
		teamworkPlainKeys,
		jiraPlainKeys,
		confluencePlainKeys,
		snowflakePlainKeys,
		linearPlainKeys,
		platformPlainKeys,
	)
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
