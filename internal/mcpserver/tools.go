package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func addTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Add an open task to the todo file."),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("Task description")),
		mcp.WithString("project",
			mcp.Description("Project name (defaults to the configured default project)")),
		mcp.WithString("due",
			mcp.Description("Due date as YYYY-MM-DD")),
	)
}

func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks as numbered lines. Optionally filter by project and sort."),
		mcp.WithString("sort",
			mcp.Description("Sort key"),
			mcp.Enum("status", "project", "due")),
		mcp.WithString("project",
			mcp.Description("Only list tasks tagged with this exact project")),
	)
}

func completeTaskTool() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Mark the first open task containing the text as done."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Text contained in the task line")),
	)
}

func deleteTaskTool() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete every task whose line contains the text."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Text contained in the task lines")),
	)
}

func moveTaskTool() mcp.Tool {
	return mcp.NewTool("move_task",
		mcp.WithDescription("Move the first task containing the text to another project. Due date and note are dropped when the task already had a project."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Text contained in the task line")),
		mcp.WithString("new_project",
			mcp.Required(),
			mcp.Description("Target project name")),
	)
}

func addNoteTool() mcp.Tool {
	return mcp.NewTool("add_note",
		mcp.WithDescription("Attach a note to a task or project header, replacing any existing note."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Text contained in the task line, or the project name when project is true")),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("Note text")),
		mcp.WithBoolean("project",
			mcp.Description("Attach the note to the project header named target")),
	)
}

func clearCompletedTool() mcp.Tool {
	return mcp.NewTool("clear_completed",
		mcp.WithDescription("Remove every completed task."),
	)
}

func addProjectTool() mcp.Tool {
	return mcp.NewTool("add_project",
		mcp.WithDescription("Create a project header line."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name")),
	)
}

func deleteProjectTool() mcp.Tool {
	return mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project header and every task tagged with the project."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name")),
	)
}

func moveProjectTool() mcp.Tool {
	return mcp.NewTool("move_project",
		mcp.WithDescription("Retag every task of a project with a new project name."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Current project name")),
		mcp.WithString("new_project",
			mcp.Required(),
			mcp.Description("New project name")),
	)
}

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List projects with task counts and notes."),
	)
}

func exportTool() mcp.Tool {
	return mcp.NewTool("export",
		mcp.WithDescription("Write a snapshot of all tasks and projects to a file and return its path."),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum("json", "ndjson", "yaml")),
		mcp.WithString("out",
			mcp.Description("Output directory (defaults to the configured export directory)")),
	)
}
