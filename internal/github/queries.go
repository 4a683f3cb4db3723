package github

const projectDetailsQuery = `
query($org: String!, $number: Int!) {
  organization(login: $org) {
    projectV2(number: $number) {
      id
      title
      number
      url
      fields(first: 20) {
        nodes {
          ... on ProjectV2Field { id name dataType }
          ... on ProjectV2IterationField {
            id
            name
            configuration { iterations { startDate id title } }
          }
          ... on ProjectV2SingleSelectField {
            id
            name
            options { id name }
          }
        }
      }
      items(first: 10) {
        nodes {
          id
          content {
            ... on Issue { id title url }
            ... on PullRequest { id title url }
          }
        }
      }
    }
  }
}`

const projectIterationsQuery = `
query($org: String!, $number: Int!) {
  organization(login: $org) {
    projectV2(number: $number) {
      fields(first: 20) {
        nodes {
          ... on ProjectV2IterationField {
            id
            name
            configuration { iterations { id title startDate duration } }
          }
        }
      }
    }
  }
}`

const issueFields = `
  id
  number
  title
  url
  state
  body
  createdAt
  updatedAt
  closedAt
  author { login url }
  assignees(first: 10) { nodes { login url } }
  labels(first: 10) { nodes { name color } }
  repository { nameWithOwner url }`

const pullRequestFields = `
  id
  number
  title
  url
  state
  body
  createdAt
  updatedAt
  closedAt
  mergedAt
  merged
  author { login url }
  assignees(first: 10) { nodes { login url } }
  labels(first: 10) { nodes { name color } }
  repository { nameWithOwner url }
  baseRefName
  headRefName
  additions
  deletions
  changedFiles
  reviews(first: 10) { nodes { state author { login } } }`

const iterationFieldValues = `
  fieldValues(first: 20) {
    nodes {
      ... on ProjectV2ItemFieldIterationValue {
        iterationId
        field { ... on ProjectV2IterationField { id name } }
      }
    }
  }`

const projectIssuesQuery = `
query($org: String!, $number: Int!, $after: String) {
  organization(login: $org) {
    projectV2(number: $number) {
      items(first: 100, after: $after) {
        nodes {
          content {
            ... on Issue {` + issueFields + `
              parent {` + issueFields + `
              }
            }
          }` + iterationFieldValues + `
        }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

const projectPullRequestsQuery = `
query($org: String!, $number: Int!, $after: String) {
  organization(login: $org) {
    projectV2(number: $number) {
      items(first: 100, after: $after) {
        nodes {
          content {
            ... on PullRequest {` + pullRequestFields + `
            }
          }` + iterationFieldValues + `
        }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

const repoPullRequestsQuery = `
query($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(
      first: 100,
      after: $after,
      states: [MERGED, CLOSED, OPEN],
      orderBy: {field: UPDATED_AT, direction: DESC}
    ) {
      nodes {` + pullRequestFields + `
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`
