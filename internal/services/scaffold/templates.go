package scaffold

// Template is one starter job document offered by `jobs init`
type Template struct {
	Name        string
	Description string
	Content     string
}

// Templates returns the starter catalog in presentation order
func Templates() []Template {
	return []Template{
		{
			Name:        "hello",
			Description: "Single echo job",
			Content:     helloTemplate,
		},
		{
			Name:        "pipeline",
			Description: "Dependent jobs passing results with transitions",
			Content:     pipelineTemplate,
		},
		{
			Name:        "cron",
			Description: "Scheduled job with lifecycle hooks",
			Content:     cronTemplate,
		},
		{
			Name:        "container",
			Description: "Containerized command on a docker engine",
			Content:     containerTemplate,
		},
	}
}

// Find returns the template with the given name
func Find(name string) (Template, bool) {
	for _, t := range Templates() {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

const helloTemplate = `jobs:
  - id: hello
    name: Say hello
    plugin: echo
    params:
      message: "Hello from ${HOSTNAME} at ${CURRENT_TIME}"
`

const pipelineTemplate = `jobs:
  - id: fetch
    name: Fetch a page
    plugin: http-get
    timeout: 30
    params:
      url: "https://example.org"
    on_success:
      - report

  - id: extract
    name: Extract the status
    plugin: echo
    depends_on:
      - fetch
    input:
      status: "${result:fetch:status}"
    params:
      message: "upstream answered ${JOB_INPUT_STATUS}"

  - id: report
    name: Report completion
    plugin: echo
    enabled: false
    params:
      message: "pipeline finished on ${OS_NAME}/${OS_ARCH}"
`

const cronTemplate = `jobs:
  - id: tick
    name: Periodic tick
    plugin: echo
    schedule: "*/5 * * * *"
    params:
      message: "tick at ${CURRENT_TIME}"

  - id: announce
    name: Announce the run
    plugin: echo
    enabled: false
    params:
      message: "run starting on ${HOSTNAME}"

  - id: complain
    name: Complain about failures
    plugin: echo
    enabled: false
    params:
      message: "a job failed"

hooks:
  before_all:
    - announce
  on_error:
    - complain
`

const containerTemplate = `jobs:
  - id: inspect
    name: Inspect the container OS
    timeout: 120
    retries:
      count: 1
      interval: 5
    container:
      image: "alpine:latest"
      engine: docker
      command: ["cat", "/etc/os-release"]
`
