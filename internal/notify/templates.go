package notify

// Notification kinds recorded on outbox rows.
const (
	KindWelcome             = "welcome"
	KindSigninNotice        = "signin_notice"
	KindReportCreated       = "report_created"
	KindReportRouted        = "report_routed"
	KindReportStatusChanged = "report_status_changed"
	KindReportDeleted       = "report_deleted"
	KindProfileUpdated      = "profile_updated"
	KindSirenOps            = "siren_ops"
	KindSirenAuthority      = "siren_authority"
)

const welcomeTemplate = `<html><body>
<h2>Welcome to CampusShield, {{ .Username }}!</h2>
<p>Your account was created on {{ date "Jan 02, 2006" .CreatedAt }}. Sign in to
submit incident reports, manage your emergency contacts and reach campus
safety in one tap.</p>
<p>Stay safe,<br/>The CampusShield Team</p>
</body></html>`

const signinNoticeTemplate = `<html><body>
<h3>New sign-in to your CampusShield account</h3>
<p>Hi {{ .Username }}, your account was just signed in to. If this was not
you, rotate your password from the profile page immediately.</p>
</body></html>`

const reportCreatedTemplate = `<html><body>
<h3>We received your report</h3>
<p>Hi {{ .Username }}, your report <b>{{ .Title }}</b> was filed and is now
<b>{{ .Status }}</b>. Campus safety staff will triage it shortly.</p>
<p>Incident time: {{ date "Jan 02, 2006 15:04" .OccurredAt }}</p>
</body></html>`

const reportRoutedTemplate = `<html><body>
<h3>New incident report</h3>
<p>A report titled <b>{{ .Title }}</b> was filed{{ with .Username }} by
{{ . }}{{ end }} and routed to you for attention.</p>
<p>{{ .Description }}</p>
<p>Location: {{ .Latitude }}, {{ .Longitude }}</p>
</body></html>`

const reportStatusChangedTemplate = `<html><body>
<h3>Your report status changed</h3>
<p>Hi {{ .Username }}, the status of your report <b>{{ .Title }}</b> is now
<b>{{ .Status }}</b>.</p>
</body></html>`

const reportDeletedTemplate = `<html><body>
<h3>Your report was removed</h3>
<p>Hi {{ .Username }}, your report <b>{{ .Title }}</b> was removed by a
CampusShield administrator.</p>
</body></html>`

const profileUpdatedTemplate = `<html><body>
<h3>Profile updated</h3>
<p>Hi {{ .Username }}, your CampusShield profile was just updated. If this
was not you, rotate your password immediately.</p>
</body></html>`

const sirenTemplate = `<html><body>
<h2 style="color:#c0392b">SIREN ALERT</h2>
<p><b>{{ default "Anonymous" .Username }}</b> raised alert
<b>{{ .Title }}</b> (incident {{ .IncidentNumber }}).</p>
<p>{{ .Description }}</p>
<p>Location: <a href="https://maps.google.com/?q={{ .Latitude }},{{ .Longitude }}">
{{ .Latitude }}, {{ .Longitude }}</a></p>
<p>Raised at {{ date "Jan 02, 2006 15:04:05" .CreatedAt }}</p>
</body></html>`
