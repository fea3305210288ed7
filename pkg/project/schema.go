package project

// configSchema is the JSON Schema for mod.config.json.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Mod Project Configuration",
  "type": "object",
  "required": ["name", "display_name", "version", "description"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"
    },
    "display_name": {
      "type": "string",
      "minLength": 1
    },
    "version": {
      "type": "string",
      "pattern": "^\\d+\\.\\d+\\.\\d+$"
    },
    "description": {
      "type": "string"
    },
    "authors": {
      "type": "array",
      "items": { "type": "string" }
    },
    "license": {
      "type": "string"
    },
    "layers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "priority"],
        "properties": {
          "name": { "type": "string" },
          "priority": { "type": "integer" },
          "description": { "type": "string" }
        }
      }
    },
    "thumbnail": {
      "type": "string"
    }
  }
}`
