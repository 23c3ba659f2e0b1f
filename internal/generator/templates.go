package generator

const githubTemplate = `name: CI
on:
  push:
    branches:
      - main
  pull_request:
    branches:
      - main
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v3
{{- if .SetupAction }}
      - uses: {{ .SetupAction }}
        with:
{{- range .SetupWith }}
          {{ . }}
{{- end }}
{{- end }}
      - name: Build
        run: {{ .BuildCommand }}
{{- if .HasTests }}
      - name: Test
        run: {{ .TestCommand }}
{{- end }}
{{- if .HasDocker }}
  docker:
    runs-on: ubuntu-latest
    needs: build
    steps:
      - uses: actions/checkout@v3
      - name: Build image
        run: docker build -t app .
{{- end }}
`

const gitlabTemplate = `stages:
  - build
{{- if .HasTests }}
  - test
{{- end }}
{{- if .HasDocker }}
  - package
{{- end }}

build:
  stage: build
  script:
    - {{ .BuildCommand }}
{{- if .HasTests }}

test:
  stage: test
  script:
    - {{ .TestCommand }}
{{- end }}
{{- if .HasDocker }}

package:
  stage: package
  script:
    - docker build -t app .
{{- end }}
`

const jenkinsTemplate = `pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                sh "{{ .BuildCommand }}"
            }
        }
{{- if .HasTests }}
        stage('Test') {
            steps {
                sh "{{ .TestCommand }}"
            }
        }
{{- end }}
{{- if .HasDocker }}
        stage('Package') {
            steps {
                sh "docker build -t app ."
            }
        }
{{- end }}
    }
}
`

const azureTemplate = `trigger:
  - main

pool:
  vmImage: ubuntu-latest

steps:
  - checkout: self
  - script: {{ .BuildCommand }}
    displayName: Build
{{- if .HasTests }}
  - script: {{ .TestCommand }}
    displayName: Test
{{- end }}
{{- if .HasDocker }}
  - script: docker build -t app .
    displayName: Build image
{{- end }}
`
