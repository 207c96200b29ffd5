package jira

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OrganizationDomain is appended to synthesized contact addresses.
const OrganizationDomain = "@redflaggroup.com"

// UnknownAddress is used when no address can be synthesized.
const UnknownAddress = "unknown@example.com"

// ContactMode records which display name shape produced a contact address.
type ContactMode string

const (
	ContactModeEmail     ContactMode = "email"
	ContactModeNameSpace ContactMode = "name+space"
	ContactModeNameDots  ContactMode = "name+dots"
)

// Contact is the outcome of display name inference.
type Contact struct {
	DisplayName string
	Email       string
	Mode        ContactMode
}

// InferContact derives a normalized display name and a contact address from
// a free text display name. It never fails; unrecognised shapes fall back to
// UnknownAddress.
//
//   - "john.doe@redflaggroup.com" -> "John Doe", the original string, email
//   - "Jane Smith" -> "Jane Smith", "jane.smith@redflaggroup.com", name+space
//   - "jane.smith" -> "Jane Smith", "jane.smith@redflaggroup.com", name+dots
func InferContact(displayName string) Contact {
	pos := strings.Index(strings.ToLower(displayName), OrganizationDomain)
	if pos >= 0 {
		local := strings.ReplaceAll(displayName[:pos], ".", " ")

		return Contact{
			DisplayName: cases.Title(language.Und, cases.NoLower).String(local),
			Email:       displayName,
			Mode:        ContactModeEmail,
		}
	}

	tokens := nameTokens(displayName)

	if strings.Contains(displayName, " ") {
		contact := Contact{
			DisplayName: displayName,
			Email:       UnknownAddress,
			Mode:        ContactModeNameSpace,
		}

		if len(tokens) >= 2 {
			contact.Email = tokens[0] + "." + tokens[len(tokens)-1] + OrganizationDomain
		}

		return contact
	}

	contact := Contact{
		DisplayName: displayName,
		Email:       UnknownAddress,
		Mode:        ContactModeNameDots,
	}

	if len(tokens) >= 2 {
		first, last := tokens[0], tokens[len(tokens)-1]
		contact.DisplayName = upperFirst(first) + " " + upperFirst(last)
		contact.Email = first + "." + last + OrganizationDomain
	}

	return contact
}

func nameTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', ',', '.', '\n', '\t':
			return true
		default:
			return false
		}
	})

	tokens := make([]string, 0, len(fields))

	for _, field := range fields {
		token := strings.ToLower(strings.TrimSpace(field))
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	head := strings.ToUpper(string(runes[0]))

	return head + string(runes[1:])
}

// User is a Jira user record. Every key of the source record is kept in
// Attributes; displayName, email and mode reflect contact inference when the
// record carried a displayName.
type User struct {
	Attributes  Payload
	DisplayName string
	Email       string
	Mode        ContactMode
}

// NewUser builds a User from a decoded record.
func NewUser(record Payload) *User {
	user := &User{Attributes: record.Clone()}

	raw, ok := user.Attributes["displayName"]
	if !ok {
		return user
	}

	name, ok := raw.Str()
	if !ok {
		return user
	}

	contact := InferContact(name)
	user.DisplayName = contact.DisplayName
	user.Email = contact.Email
	user.Mode = contact.Mode

	user.Attributes["displayName"] = StringValue(contact.DisplayName)
	user.Attributes["email"] = StringValue(contact.Email)
	user.Attributes["mode"] = StringValue(string(contact.Mode))

	return user
}

// ID returns the Jira account id.
func (u *User) ID() string { return u.Attributes.String("accountId") }

// Key returns the legacy user key.
func (u *User) Key() string { return u.Attributes.String("key") }

// Name returns the login name.
func (u *User) Name() string { return u.Attributes.String("name") }

// EmailAddress returns the address Jira reported, which may be hidden.
func (u *User) EmailAddress() string { return u.Attributes.String("emailAddress") }

// Active reports the account state.
func (u *User) Active() bool { return u.Attributes.Bool("active") }

// Self returns the API URL of the record.
func (u *User) Self() string { return u.Attributes.String("self") }

// Get returns any attribute by name.
func (u *User) Get(key string) Value { return u.Attributes[key] }

// Project is a Jira project record.
type Project struct {
	Attributes Payload
}

// NewProject builds a Project from a decoded record.
func NewProject(record Payload) *Project {
	return &Project{Attributes: record.Clone()}
}

// ID returns projectId, or id for records from the standard endpoints.
func (p *Project) ID() string {
	if id := p.Attributes.Get("projectId"); id.Exists() {
		return id.Text()
	}

	return p.Attributes.Get("id").Text()
}

func (p *Project) Key() string  { return p.Attributes.String("key") }
func (p *Project) Name() string { return p.Attributes.String("name") }

// Lead materializes the project lead, or returns nil.
func (p *Project) Lead() *User {
	lead := p.Attributes.Object("lead")
	if lead == nil {
		return nil
	}

	return NewUser(lead)
}

// Get returns any attribute by name.
func (p *Project) Get(key string) Value { return p.Attributes[key] }

// Group is a Jira group record.
type Group struct {
	Attributes Payload
}

// NewGroup builds a Group from a decoded record.
func NewGroup(record Payload) *Group {
	return &Group{Attributes: record.Clone()}
}

// ID returns the group id.
func (g *Group) ID() string { return g.Attributes.String("groupId") }

// Name returns the group name.
func (g *Group) Name() string { return g.Attributes.String("name") }

// Get returns any attribute by name.
func (g *Group) Get(key string) Value { return g.Attributes[key] }

// Issue is a Jira issue record. Field accessors look up the human readable
// field name first (as produced by AutomapFields) and then the field id.
type Issue struct {
	Attributes Payload
}

// NewIssue builds an Issue from a decoded record.
func NewIssue(record Payload) *Issue {
	return &Issue{Attributes: record.Clone()}
}

func (i *Issue) ID() string   { return i.Attributes.String("id") }
func (i *Issue) Key() string  { return i.Attributes.String("key") }
func (i *Issue) Self() string { return i.Attributes.String("self") }

// Fields returns the fields object of the issue.
func (i *Issue) Fields() Payload { return i.Attributes.Object("fields") }

// ExpandedInformation returns the expand value of the issue.
func (i *Issue) ExpandedInformation() string { return i.Attributes.String("expand") }

// Get returns the field stored under fieldKey, or the zero Value.
func (i *Issue) Get(fieldKey string) Value {
	return i.Fields().Get(fieldKey)
}

func (i *Issue) field(name, id string) Value {
	fields := i.Fields()
	if value, ok := fields[name]; ok {
		return value
	}

	return fields[id]
}

func (i *Issue) Summary() string     { return i.field("Summary", "summary").Text() }
func (i *Issue) Description() string { return i.field("Description", "description").Text() }
func (i *Issue) Created() string     { return i.field("Created", "created").Text() }
func (i *Issue) Updated() string     { return i.field("Updated", "updated").Text() }
func (i *Issue) DueDate() string     { return i.field("Due Date", "duedate").Text() }

func (i *Issue) ResolutionDate() string {
	return i.field("Resolved", "resolutiondate").Text()
}

func (i *Issue) IssueType() Payload   { return objectOf(i.field("Issue Type", "issuetype")) }
func (i *Issue) Priority() Payload    { return objectOf(i.field("Priority", "priority")) }
func (i *Issue) Status() Payload      { return objectOf(i.field("Status", "status")) }
func (i *Issue) Resolution() Payload  { return objectOf(i.field("Resolution", "resolution")) }
func (i *Issue) Watchers() Payload    { return objectOf(i.field("Watchers", "watches")) }
func (i *Issue) FixVersions() []Value { return arrayOf(i.field("Fix Version/s", "fixVersions")) }

// Labels returns the issue labels.
func (i *Issue) Labels() []string {
	values := arrayOf(i.field("Labels", "labels"))
	labels := make([]string, 0, len(values))

	for _, value := range values {
		if s, ok := value.Str(); ok {
			labels = append(labels, s)
		}
	}

	return labels
}

// Reporter materializes the reporter, or returns nil.
func (i *Issue) Reporter() *User { return userOf(i.field("Reporter", "reporter")) }

// Assignee materializes the assignee, or returns nil.
func (i *Issue) Assignee() *User { return userOf(i.field("Assignee", "assignee")) }

// Project materializes the issue project, or returns nil.
func (i *Issue) Project() *Project {
	record := objectOf(i.field("Project", "project"))
	if record == nil {
		return nil
	}

	return NewProject(record)
}

func objectOf(value Value) Payload {
	obj, _ := value.Object()

	return obj
}

func arrayOf(value Value) []Value {
	arr, _ := value.Array()

	return arr
}

func userOf(value Value) *User {
	record := objectOf(value)
	if record == nil {
		return nil
	}

	return NewUser(record)
}
