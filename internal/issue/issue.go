// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigFileNotFoundId Id = iota + 1
	DirectoryNotFoundId
	NotAnObjectId
	MalformedJSONId
	MissingKeysId
	SchemaMismatchId
	RepositoryNotFoundId
	DetachedHeadId
	InterpreterNotFoundId
	PackageListFailedId
	SettingsLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns reference pages for the tool involved in the fix.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns background reading.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue page with the named glamour style ("auto",
// "dark", "light", "notty") or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configFileNotFoundIssue = &Issue{
		id: ConfigFileNotFoundId,
		mdMsg: `
# Configuration file not found!

The run configuration you asked for does not exist.

## Things you can try:
- Check the path for typos
- Find the most recent configuration in a directory:
~~~
$ runcfg newest ./configs
~~~

- Create a new one:
~~~
$ runcfg create ./configs/train.json
~~~`,
	}

	directoryNotFoundIssue = &Issue{
		id: DirectoryNotFoundId,
		mdMsg: `
# Directory not found!

The directory to search for configuration files does not exist.

## Things you can try:
- Check the path for typos
- Create a configuration there first; parent directories are created automatically:
~~~
$ runcfg create ./configs/train.json
~~~`,
	}

	notAnObjectIssue = &Issue{
		id: NotAnObjectId,
		mdMsg: `
# Not a configuration object!

A run configuration must be a JSON object at the top level, but this file
holds an array, string, number, boolean or null.

## Things you can try:
- Open the file and check it was not overwritten by another tool
- Recreate it:
~~~
$ runcfg create ./configs/train.json
~~~`,
	}

	malformedJSONIssue = &Issue{
		id: MalformedJSONId,
		mdMsg: `
# Malformed JSON!

The configuration file could not be parsed as JSON.

## Things you can try:
- Look for a truncated file or a trailing comma near the reported position
- Validate the file with a JSON linter`,
		extLinks: []HttpLink{"https://www.json.org/json-en.html"},
	}

	missingKeysIssue = &Issue{
		id: MissingKeysId,
		mdMsg: `
# Required keys missing!

The configuration file does not contain every key that was required.

## Things you can try:
- Add the missing keys:
~~~
$ runcfg add ./configs/train_2024-06-01-12-00-00-000000.json model_dir=/models/run1
~~~

- Check whether a key was removed earlier with 'runcfg remove'`,
	}

	schemaMismatchIssue = &Issue{
		id: SchemaMismatchId,
		mdMsg: `
# Configuration does not match the expected shape!

A field written by runcfg has the wrong type or format.

## Expected fields:
~~~
config_path              non-empty string
hyper_params             object
python.interpreter       non-empty string
python.version           string
python.packages          list of strings
repository.active_branch non-empty string
repository.commit_version full commit hash
train_datetime           YYYY-MM-DD-HH-MM-SS-ffffff
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	repositoryNotFoundIssue = &Issue{
		id: RepositoryNotFoundId,
		mdMsg: `
# No git repository found!

runcfg records the active branch and commit of the repository holding your
training code, but could not find one.

## Things you can try:
- Run runcfg from inside your repository
- Point it at the repository in your settings file:
~~~cue
repository: {
	base_dir:       "/path/to/repo"
	ancestor_depth: 0
}
~~~

- Use a negative ancestor_depth to search upward for a .git directory`,
	}

	detachedHeadIssue = &Issue{
		id: DetachedHeadId,
		mdMsg: `
# HEAD is detached!

The repository is not on a branch, so there is no active branch to record.

## Things you can try:
- Check out a branch:
~~~
$ git switch main
~~~

- Or create one at the current commit:
~~~
$ git switch -c experiment
~~~`,
		docLinks: []HttpLink{"https://git-scm.com/docs/git-switch"},
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Interpreter not found!

The interpreter that will run training could not be found on PATH.

## Things you can try:
- Activate your virtual environment before running runcfg
- Configure the interpreter explicitly:
~~~cue
environment: interpreter: "/opt/venv/bin/python"
~~~`,
	}

	packageListFailedIssue = &Issue{
		id: PackageListFailedId,
		mdMsg: `
# Listing installed packages failed!

The package listing command could not be run or exited with an error.

## Things you can try:
- Run the command yourself to see its output:
~~~
$ pip freeze
~~~

- Configure a different command, for example for uv:
~~~cue
environment: package_command: "uv pip freeze"
~~~`,
		docLinks: []HttpLink{"https://pip.pypa.io/en/stable/cli/pip_freeze/"},
	}

	settingsLoadFailedIssue = &Issue{
		id: SettingsLoadFailedId,
		mdMsg: `
# Failed to load settings!

The runcfg settings file could not be loaded.

## Things you can try:
- Check the file for CUE syntax errors
- Show where runcfg looks for it:
~~~
$ runcfg config path
~~~

- Write a fresh default file:
~~~
$ runcfg config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read or write the configuration file.

## Things you can try:
- Check file and directory permissions
- Write configurations to a directory you own`,
	}

	issues = map[Id]*Issue{
		configFileNotFoundIssue.Id():  configFileNotFoundIssue,
		directoryNotFoundIssue.Id():   directoryNotFoundIssue,
		notAnObjectIssue.Id():         notAnObjectIssue,
		malformedJSONIssue.Id():       malformedJSONIssue,
		missingKeysIssue.Id():         missingKeysIssue,
		schemaMismatchIssue.Id():      schemaMismatchIssue,
		repositoryNotFoundIssue.Id():  repositoryNotFoundIssue,
		detachedHeadIssue.Id():        detachedHeadIssue,
		interpreterNotFoundIssue.Id(): interpreterNotFoundIssue,
		packageListFailedIssue.Id():   packageListFailedIssue,
		settingsLoadFailedIssue.Id():  settingsLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
